package main

import (
	"github.com/aretw0/beatbox/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <rule_file> <start_rule>",
	Short: "Print every cursor transition",
	Long: `Prints one line per transition: the position stack before, the terminal emitted (if any)
and the position stack after. Stacks are printed bottom to top; BEGIN and END mark a level
that has not started yet or has been exhausted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd, args[0], false)
		if err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")
		tracer := tui.NewTracer(cmd.OutOrStdout())
		if plain {
			tracer = tui.NewPlainTracer(cmd.OutOrStdout())
		}
		return eng.Trace(cmd.Context(), args[1], tracer.Step)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().Bool("plain", false, "Disable colours")
}
