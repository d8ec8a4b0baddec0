package main

import (
	"fmt"

	"github.com/aretw0/beatbox/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <rule_file> [start_rule]",
	Short: "Export the rule reference graph",
	Long: `Outputs a Mermaid diagram (graph TD) with one node per rule and an edge for every
non-terminal its replacement references. With a start sequence, reachable and unused
rules are highlighted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd, args[0], false)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if len(args) == 2 {
			report, err := eng.Validate(args[1])
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{Root: args[1], Report: report}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(eng.Table(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
