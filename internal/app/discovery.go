package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gitopslab/fleetgen/internal/logging"
	"github.com/gitopslab/fleetgen/internal/promotion"
)

const (
	// CategoryWorkloads is the category of ordinary deployable applications.
	CategoryWorkloads = "workloads"
	// CategoryInfra is the category of cluster infrastructure applications.
	CategoryInfra = "infra"

	appsDir = "apps"

	// DeclarationFile is the per-application declaration read by the
	// generator.
	DeclarationFile = "app-config.yaml"

	// selfManagedEntry is the infra subdirectory reserved for the GitOps
	// controller's own self-management. It is the controller, not a managed
	// app, and is never discovered.
	selfManagedEntry = "argocd"
)

// Application is a named deployable unit discovered from its declaration.
type Application struct {
	// Name uniquely identifies the application within its category.
	Name string
	// Category is CategoryWorkloads or CategoryInfra.
	Category string
	// SourcePath is the repo-relative path to the application's deployable
	// definition, e.g. "apps/workloads/echo".
	SourcePath string
	// TargetEnvironments is the set of environments the application declares
	// it should run in. Empty means the application participates in no
	// placement and produces no pipeline resources.
	TargetEnvironments []string
}

// declaration is the structure of an application's declaration file.
type declaration struct {
	TargetClusters []string `yaml:"targetClusters"`
}

// Discover enumerates the workload and infra category roots under repoRoot
// and returns a catalog entry for every directory carrying a declaration
// file. Directories without one are skipped with a logged notice. A present
// but unparsable declaration, or a declared environment outside the known
// universe, aborts discovery.
func Discover(
	ctx context.Context,
	repoRoot string,
	envs promotion.Environments,
) ([]Application, error) {
	var apps []Application
	for _, category := range []string{CategoryWorkloads, CategoryInfra} {
		categoryApps, err := discoverInCategory(ctx, repoRoot, category, envs)
		if err != nil {
			return nil, fmt.Errorf("discovering %s: %w", category, err)
		}
		apps = append(apps, categoryApps...)
	}
	return apps, nil
}

func discoverInCategory(
	ctx context.Context,
	repoRoot string,
	category string,
	envs promotion.Environments,
) ([]Application, error) {
	logger := logging.LoggerFromContext(ctx)

	baseDir := filepath.Join(repoRoot, appsDir, category)
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var apps []Application
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		if category == CategoryInfra && name == selfManagedEntry {
			continue
		}

		declPath := filepath.Join(baseDir, name, DeclarationFile)
		if _, err = os.Stat(declPath); os.IsNotExist(err) {
			logger.Info(
				"skipping directory without declaration",
				"category", category,
				"app", name,
			)
			continue
		}

		decl, err := readDeclaration(declPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", declPath, err)
		}

		for _, env := range decl.TargetClusters {
			if !envs.Contains(env) {
				return nil, fmt.Errorf(
					"%s: unknown target environment %q", declPath, env,
				)
			}
		}

		apps = append(apps, Application{
			Name:               name,
			Category:           category,
			SourcePath:         filepath.Join(appsDir, category, name),
			TargetEnvironments: decl.TargetClusters,
		})

		logger.Info(
			"found app",
			"category", category,
			"app", name,
			"targets", decl.TargetClusters,
		)
	}

	return apps, nil
}

func readDeclaration(path string) (*declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decl := &declaration{}
	if err = yaml.Unmarshal(data, decl); err != nil {
		return nil, fmt.Errorf("unmarshaling declaration: %w", err)
	}
	return decl, nil
}
