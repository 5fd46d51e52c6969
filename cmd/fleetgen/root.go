package main

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "fleetgen",
	DisableAutoGenTag: true,
	SilenceErrors:     true,
	SilenceUsage:      true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func Execute(ctx context.Context) error {
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newPlacementsCommand())
	rootCmd.AddCommand(newPipelinesCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd.ExecuteContext(ctx)
}
