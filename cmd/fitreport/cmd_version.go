package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the configured version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fitreport version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.Name, cfg.Version)
	},
}
