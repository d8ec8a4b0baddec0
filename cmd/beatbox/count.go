package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count <rule_file> <start_rule>...",
	Short: "Count the samples each start sequence expands to",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd, args[0], false)
		if err != nil {
			return err
		}
		starts := args[1:]
		counts, err := eng.CountAll(cmd.Context(), starts)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, start := range starts {
			n := counts[start]
			fmt.Fprintf(tw, "%s\t%d samples\t%.2f seconds\n", start, n, float64(n)/audio.SampleRate)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
