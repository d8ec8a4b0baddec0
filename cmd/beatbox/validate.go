package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <rule_file> [start_rule]",
	Short: "Check the rule table for consistency",
	Long: `Parses the rule file and, when a start sequence is given, reports the rules it reaches,
the rules it never uses and the terminals it can emit. Nothing is expanded, so
self-referential tables are fine.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd, args[0], false)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		out := cmd.OutOrStdout()
		t := eng.Table()
		fmt.Fprintf(out, "%d rules, policy %s, fingerprint %.12s\n", t.Len(), t.Policy(), t.Fingerprint())

		if len(args) == 1 {
			fmt.Fprintln(out, "Rule table is valid!")
			return nil
		}

		report, err := eng.Validate(args[1])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(out, "reachable: %s\n", joinSymbols(report.Reachable))
		fmt.Fprintf(out, "unused:    %s\n", joinSymbols(report.Unused))
		fmt.Fprintf(out, "terminals: %s\n", joinSymbols(report.Terminals))
		if len(report.Empty) > 0 {
			fmt.Fprintf(out, "empty:     %s\n", joinSymbols(report.Empty))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func joinSymbols(syms []domain.Symbol) string {
	if len(syms) == 0 {
		return "-"
	}
	parts := make([]string, len(syms))
	for i, sym := range syms {
		parts[i] = string(rune(sym))
	}
	return strings.Join(parts, " ")
}
