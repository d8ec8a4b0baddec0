package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/beatbox/internal/config"
	"github.com/aretw0/beatbox/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage resumable expansions",
	Long: `Start, continue, list, inspect and remove expansion sessions. Each session is a
checkpoint of the position stack, kept in .beatbox/checkpoints unless --store says otherwise.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <rule_file> <session-id> <start_rule>",
	Short: "Start a new session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := openSessions(cmd, args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		cp, err := m.Start(cmd.Context(), args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %s started at %s\n", cp.ID, cp.Root)
		return nil
	},
}

var sessionNextCmd = &cobra.Command{
	Use:   "next <rule_file> <session-id> [count]",
	Short: "Print the next terminals of a session",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 1
		if len(args) == 3 {
			v, err := strconv.Atoi(args[2])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid count %q", args[2])
			}
			n = v
		}

		m, closeFn, err := openSessions(cmd, args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		step, err := m.Next(cmd.Context(), args[1], n)
		if step != nil {
			fmt.Fprintln(cmd.OutOrStdout(), step.Terminals)
			if step.Checkpoint.Done() {
				fmt.Fprintf(cmd.ErrOrStderr(), "session %s finished after %d terminals\n", args[1], step.Checkpoint.Emitted)
			}
		}
		return err
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		be, cfg, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer be.close()

		ids, err := be.store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No sessions found in %s store.\n", cfg.Store)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sessions:")
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the checkpoint of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, _, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer be.close()

		cp, err := be.store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session %q: %w", args[0], err)
		}
		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, _, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer be.close()

		for _, id := range args {
			if err := be.store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("error removing session %q: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s removed.\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStartCmd, sessionNextCmd, sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	sessionCmd.PersistentFlags().String("store", config.StoreFile, "Checkpoint store: file or redis (overrides server.store)")
}

func openSessionBackend(cmd *cobra.Command) (*backend, config.ServerConfig, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg.Server, err
	}
	switch {
	case cmd.Flags().Changed("store"):
		cfg.Server.Store, _ = cmd.Flags().GetString("store")
	case cfg.Server.Store == config.StoreMemory:
		// Sessions outlive the process, so the in-memory store is never useful here.
		cfg.Server.Store = config.StoreFile
	}
	be, err := openBackend(cmd.Context(), cfg.Server)
	return be, cfg.Server, err
}

func openSessions(cmd *cobra.Command, rulePath string) (*session.Manager, func(), error) {
	eng, full, err := newEngine(cmd, rulePath, false)
	if err != nil {
		return nil, nil, err
	}
	be, cfg, err := openSessionBackend(cmd)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{
		session.WithLogger(eng.Logger()),
		session.WithLockTTL(cfg.LockTTL),
		session.WithMaxSteps(full.Limits.MaxSteps),
	}
	if be.locker != nil {
		opts = append(opts, session.WithLocker(be.locker))
	}
	m := session.NewManager(be.store, eng.Table(), opts...)
	return m, func() { _ = be.close() }, nil
}
