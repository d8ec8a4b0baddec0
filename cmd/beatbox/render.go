package main

import (
	"fmt"

	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <rule_file> <output.wav> <start_rule>",
	Short: "Expand a start sequence into a WAV file",
	Long:  `Same as the root command: expands the start sequence and writes one sample per terminal to a mono 8 kHz 8-bit WAV file.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, args[0], args[1], args[2])
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, rulePath, outPath, start string) error {
	eng, _, err := newEngine(cmd, rulePath, false)
	if err != nil {
		return err
	}
	n, err := eng.RenderFile(cmd.Context(), start, outPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d samples, %.2f seconds\n", outPath, n, float64(n)/audio.SampleRate)
	return nil
}
