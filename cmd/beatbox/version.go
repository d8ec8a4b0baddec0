package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/beatbox"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of beatbox",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "beatbox version %s\n", strings.TrimSpace(beatbox.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
