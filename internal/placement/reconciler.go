package placement

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/gitopslab/fleetgen/internal/app"
	"github.com/gitopslab/fleetgen/internal/logging"
)

// Record is the generated pointer record the GitOps controller's
// auto-discovery consumes. It associates one (environment, category, app)
// placement with the application's source definition.
type Record struct {
	// ChartPath is the repo-relative path to the application's deployable
	// definition.
	ChartPath string `json:"chartPath"`
}

const recordFile = "app-config.yaml"

const recordHeader = `# GENERATED - DO NOT EDIT
# Source: %s/app-config.yaml
# Run 'fleetgen generate' to regenerate
`

// Reconciler materializes placement records under apps/clusters/ and prunes
// records whose (environment, category, app) triple is no longer declared.
type Reconciler struct {
	root string
}

// NewReconciler returns a Reconciler for the repository rooted at repoRoot.
func NewReconciler(repoRoot string) *Reconciler {
	return &Reconciler{
		root: filepath.Join(repoRoot, "apps", "clusters"),
	}
}

// Reconcile brings the on-disk placement tree in line with the declared
// applications. It first computes the full desired set in memory, then
// writes every desired record (overwriting existing ones), and only then
// walks the tree to delete stale records and empty parents. Running it twice
// with unchanged input produces no diff.
func (r *Reconciler) Reconcile(ctx context.Context, apps []app.Application) error {
	desired := desiredPlacements(apps)

	if err := r.writeRecords(ctx, apps); err != nil {
		return err
	}
	if err := r.prune(ctx, desired); err != nil {
		return err
	}

	r.logSummary(ctx, desired)
	return nil
}

// desiredPlacements computes the expected environment -> category -> app
// structure. The prune pass must use exactly this set; any divergence leaves
// orphans or deletes live placements.
func desiredPlacements(apps []app.Application) map[string]map[string]map[string]bool {
	desired := make(map[string]map[string]map[string]bool)
	for _, a := range apps {
		for _, env := range a.TargetEnvironments {
			if desired[env] == nil {
				desired[env] = make(map[string]map[string]bool)
			}
			if desired[env][a.Category] == nil {
				desired[env][a.Category] = make(map[string]bool)
			}
			desired[env][a.Category][a.Name] = true
		}
	}
	return desired
}

func (r *Reconciler) writeRecords(ctx context.Context, apps []app.Application) error {
	logger := logging.LoggerFromContext(ctx)

	for _, a := range apps {
		for _, env := range a.TargetEnvironments {
			dir := filepath.Join(r.root, env, a.Category, a.Name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}

			data, err := yaml.Marshal(Record{ChartPath: a.SourcePath})
			if err != nil {
				return fmt.Errorf("marshaling record for %s: %w", a.Name, err)
			}
			content := fmt.Sprintf(recordHeader, a.SourcePath) + string(data)

			path := filepath.Join(dir, recordFile)
			if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			logger.Debug("wrote placement record", "path", path)
		}
	}
	return nil
}

// prune deletes app directories whose triple is not in the desired set, then
// removes category and environment directories left empty.
func (r *Reconciler) prune(ctx context.Context, desired map[string]map[string]map[string]bool) error {
	logger := logging.LoggerFromContext(ctx)

	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		return nil
	}

	envEntries, err := os.ReadDir(r.root)
	if err != nil {
		return err
	}

	for _, envEntry := range envEntries {
		if !envEntry.IsDir() {
			continue
		}
		env := envEntry.Name()

		for _, category := range []string{app.CategoryWorkloads, app.CategoryInfra} {
			categoryDir := filepath.Join(r.root, env, category)
			appEntries, err := os.ReadDir(categoryDir)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}

			for _, appEntry := range appEntries {
				if !appEntry.IsDir() {
					continue
				}
				name := appEntry.Name()

				if desired[env] != nil &&
					desired[env][category] != nil &&
					desired[env][category][name] {
					continue
				}

				stale := filepath.Join(categoryDir, name)
				logger.Info("removing stale placement", "path", stale)
				if err = os.RemoveAll(stale); err != nil {
					return fmt.Errorf("removing %s: %w", stale, err)
				}
			}

			if remaining, _ := os.ReadDir(categoryDir); len(remaining) == 0 {
				_ = os.Remove(categoryDir)
			}
		}

		envDir := filepath.Join(r.root, env)
		if remaining, _ := os.ReadDir(envDir); len(remaining) == 0 {
			_ = os.Remove(envDir)
		}
	}

	return nil
}

func (r *Reconciler) logSummary(ctx context.Context, desired map[string]map[string]map[string]bool) {
	logger := logging.LoggerFromContext(ctx)

	envs := make([]string, 0, len(desired))
	for env := range desired {
		envs = append(envs, env)
	}
	sort.Strings(envs)

	for _, env := range envs {
		categories := make([]string, 0, len(desired[env]))
		for category := range desired[env] {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			names := make([]string, 0, len(desired[env][category]))
			for name := range desired[env][category] {
				names = append(names, name)
			}
			sort.Strings(names)
			logger.Info(
				"placements",
				"environment", env,
				"category", category,
				"apps", strings.Join(names, ", "),
			)
		}
	}
}
