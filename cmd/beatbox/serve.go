package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/beatbox"
	"github.com/aretw0/beatbox/internal/presentation/tui"
	httpadapter "github.com/aretw0/beatbox/pkg/adapters/http"
	"github.com/aretw0/beatbox/pkg/observability"
	"github.com/aretw0/beatbox/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <rule_file>",
	Short: "Start the HTTP server",
	Long: `Serves the rule table over a JSON API: expand, count and render start sequences,
and run resumable expansion sessions whose positions are kept in the configured
checkpoint store (memory, file or redis). Prometheus metrics are on /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		eng, cfg, err := newEngine(cmd, args[0], true, beatbox.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			return err
		}
		logger := eng.Logger()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if store, _ := cmd.Flags().GetString("store"); store != "" {
			cfg.Server.Store = store
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		be, err := openBackend(ctx, cfg.Server)
		if err != nil {
			return err
		}
		defer func() {
			if err := be.close(); err != nil {
				logger.Warn("failed to close checkpoint store", "error", err)
			}
		}()

		sessionOpts := []session.Option{
			session.WithLogger(logger),
			session.WithHooks(metrics.Hooks()),
			session.WithMaxSteps(cfg.Limits.MaxSteps),
			session.WithLockTTL(cfg.Server.LockTTL),
		}
		if be.locker != nil {
			sessionOpts = append(sessionOpts, session.WithLocker(be.locker))
		}
		sessions := session.NewManager(be.store, eng.Table(), sessionOpts...)

		handler, err := httpadapter.NewHandler(eng,
			httpadapter.WithSessions(sessions),
			httpadapter.WithMetrics(reg),
			httpadapter.WithLogger(logger),
			httpadapter.WithVersion(strings.TrimSpace(beatbox.Version)),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		tui.PrintBanner(cmd.ErrOrStderr())
		go func() {
			logger.Info("starting beatbox server", "addr", srv.Addr, "store", cfg.Server.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("beatbox server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().String("store", "", "Checkpoint store: memory, file or redis (overrides server.store)")
}
