package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitopslab/fleetgen/internal/config"
)

// generatorOptions holds the flags shared by the generating subcommands.
type generatorOptions struct {
	// RepoRoot is the repository root. When empty, it is discovered by
	// walking up from the working directory.
	RepoRoot string
	// RepoURL overrides every other source of the HTTP(S) origin URL.
	RepoURL string
}

func (o *generatorOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&o.RepoRoot,
		"repo-root",
		"",
		"Repository root (default: nearest ancestor directory containing apps/)",
	)
	cmd.Flags().StringVar(
		&o.RepoURL,
		"repo-url",
		"",
		"Git repository URL (overrides GIT_REPO_URL and values-credentials.yaml)",
	)
}

func (o *generatorOptions) resolveRepoRoot() (string, error) {
	if o.RepoRoot != "" {
		if info, err := os.Stat(o.RepoRoot); err != nil || !info.IsDir() {
			return "", fmt.Errorf("repo root %q is not a directory", o.RepoRoot)
		}
		return o.RepoRoot, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindRepoRoot(wd)
}
