package main

import (
	"github.com/spf13/cobra"

	"github.com/gitopslab/fleetgen/internal/app"
	"github.com/gitopslab/fleetgen/internal/config"
	"github.com/gitopslab/fleetgen/internal/logging"
	"github.com/gitopslab/fleetgen/internal/pipeline"
	"github.com/gitopslab/fleetgen/internal/promotion"
)

func newPipelinesCommand() *cobra.Command {
	cmdOpts := &generatorOptions{}
	cmd := &cobra.Command{
		Use:               "pipelines",
		Short:             "Regenerate Kargo pipeline resources only",
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

			envs := promotion.DefaultEnvironments()

			apps, err := app.Discover(ctx, repoRoot, envs)
			if err != nil {
				return err
			}
			logger.Info("discovered apps", "count", len(apps))

			origins, err := config.ResolveOrigins(
				config.GeneratorConfigFromEnv(),
				repoRoot,
				cmdOpts.RepoURL,
			)
			if err != nil {
				return err
			}

			return pipeline.NewEmitter(repoRoot, origins, envs).Emit(ctx, apps)
		},
	}
	cmdOpts.addFlags(cmd)
	return cmd
}
