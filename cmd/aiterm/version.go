package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/aiterm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aiterm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aiterm version %s\n", strings.TrimSpace(aiterm.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
