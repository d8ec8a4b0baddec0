package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const usage = `Usage:
beatbox <rule_file> <output.wav> <start_rule>
e.g.: beatbox beat.txt beat.wav L

Run 'beatbox --help' for the other commands.
`

var rootCmd = &cobra.Command{
	Use:   "beatbox <rule_file> <output.wav> <start_rule>",
	Short: "beatbox expands rewrite rules into 8 kHz beats",
	Long: `beatbox reads a table of rewrite rules, expands a start sequence depth-first and
writes one 8-bit audio sample per terminal symbol to a mono 8 kHz WAV file.

Use ':literal' as the rule file to play the built-in beat table.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 3 {
			fmt.Fprint(cmd.OutOrStdout(), usage)
			return nil
		}
		return runRender(cmd, args[0], args[1], args[2])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "beatbox.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
}
