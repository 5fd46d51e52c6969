package main

import (
	"github.com/spf13/cobra"

	"github.com/gitopslab/fleetgen/internal/app"
	"github.com/gitopslab/fleetgen/internal/config"
	"github.com/gitopslab/fleetgen/internal/logging"
	"github.com/gitopslab/fleetgen/internal/pipeline"
	"github.com/gitopslab/fleetgen/internal/placement"
	"github.com/gitopslab/fleetgen/internal/promotion"
	versionpkg "github.com/gitopslab/fleetgen/internal/version"
)

func newGenerateCommand() *cobra.Command {
	cmdOpts := &generatorOptions{}
	cmd := &cobra.Command{
		Use:               "generate",
		Short:             "Regenerate cluster placements and Kargo pipeline resources",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.LoggerFromContext(ctx)

			version := versionpkg.GetVersion()
			logger.Info(
				"starting fleetgen",
				"version", version.Version,
				"commit", version.GitCommit,
			)

			repoRoot, err := cmdOpts.resolveRepoRoot()
			if err != nil {
				return err
			}
			logger.Info("repository root", "path", repoRoot)

			envs := promotion.DefaultEnvironments()

			apps, err := app.Discover(ctx, repoRoot, envs)
			if err != nil {
				return err
			}
			logger.Info("discovered apps", "count", len(apps))

			// Resolve origin URLs up front so a configuration error aborts
			// before any output is rewritten.
			origins, err := config.ResolveOrigins(
				config.GeneratorConfigFromEnv(),
				repoRoot,
				cmdOpts.RepoURL,
			)
			if err != nil {
				return err
			}
			logger.Info(
				"artifact origin",
				"repoURL", origins.RepoURL,
				"subscriptionRepoURL", origins.SubscriptionRepoURL,
			)

			if err = placement.NewReconciler(repoRoot).Reconcile(ctx, apps); err != nil {
				return err
			}

			return pipeline.NewEmitter(repoRoot, origins, envs).Emit(ctx, apps)
		},
	}
	cmdOpts.addFlags(cmd)
	return cmd
}
