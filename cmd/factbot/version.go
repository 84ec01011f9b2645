package main

import (
	"fmt"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", core.BotName, core.BotVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
