package main

import (
	"github.com/spf13/cobra"

	"github.com/gitopslab/fleetgen/internal/app"
	"github.com/gitopslab/fleetgen/internal/logging"
	"github.com/gitopslab/fleetgen/internal/placement"
	"github.com/gitopslab/fleetgen/internal/promotion"
)

func newPlacementsCommand() *cobra.Command {
	cmdOpts := &generatorOptions{}
	cmd := &cobra.Command{
		Use:               "placements",
		Short:             "Reconcile per-cluster placement directories only",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.LoggerFromContext(ctx)

			repoRoot, err := cmdOpts.resolveRepoRoot()
			if err != nil {
				return err
			}
			logger.Info("repository root", "path", repoRoot)

			apps, err := app.Discover(ctx, repoRoot, promotion.DefaultEnvironments())
			if err != nil {
				return err
			}
			logger.Info("discovered apps", "count", len(apps))

			return placement.NewReconciler(repoRoot).Reconcile(ctx, apps)
		},
	}
	cmdOpts.addFlags(cmd)
	return cmd
}
