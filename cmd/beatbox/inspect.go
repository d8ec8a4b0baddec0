package main

import (
	"fmt"

	"github.com/aretw0/beatbox/internal/presentation/tui"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <rule_file> [start_rule]",
	Short: "Render the rule table as markdown",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd, args[0], false)
		if err != nil {
			return err
		}

		var report *grammar.Report
		if len(args) == 2 {
			r, err := eng.Validate(args[1])
			if err != nil {
				return err
			}
			report = &r
		}

		markdown := tui.RulesMarkdown(eng.Table(), report)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), markdown)
			return nil
		}
		rendered, err := tui.NewRenderer()(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
