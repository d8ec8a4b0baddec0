package main

import (
	"bufio"
	"fmt"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/ports"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print <rule_file> <start_rule>",
	Short: "Print the terminal stream of a start sequence",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd, args[0], false)
		if err != nil {
			return err
		}

		w := bufio.NewWriter(cmd.OutOrStdout())
		_, runErr := eng.Run(cmd.Context(), args[1], ports.SinkFunc(func(sym domain.Symbol) error {
			return w.WriteByte(byte(sym))
		}))
		if runErr == nil {
			fmt.Fprintln(w)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}
