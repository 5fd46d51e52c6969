package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"github.com/gitopslab/fleetgen/internal/app"
	"github.com/gitopslab/fleetgen/internal/config"
	"github.com/gitopslab/fleetgen/internal/kargoapi"
	"github.com/gitopslab/fleetgen/internal/logging"
	"github.com/gitopslab/fleetgen/internal/promotion"
)

const (
	namespaceFile     = "namespace.yaml"
	projectFile       = "project.yaml"
	projectConfigFile = "project-config.yaml"
	warehouseFile     = "warehouse.yaml"
	stagesFile        = "stages.yaml"

	subscriptionBranch = "main"

	// defaultShardEnvironment is served by the controller's default shard
	// instead of a shard named after the environment.
	defaultShardEnvironment = "infra"
)

const resourceHeader = `# GENERATED - DO NOT EDIT
# Source: %s/app-config.yaml
# Run 'fleetgen generate' to regenerate
`

// Emitter regenerates the per-application pipeline resources under
// apps/kargo-configs/. Output is machine-owned: the whole output root is
// deleted and rebuilt on every run.
type Emitter struct {
	root    string
	origins config.Origins
	envs    promotion.Environments
}

// NewEmitter returns an Emitter for the repository rooted at repoRoot.
func NewEmitter(
	repoRoot string,
	origins config.Origins,
	envs promotion.Environments,
) *Emitter {
	return &Emitter{
		root:    filepath.Join(repoRoot, "apps", "kargo-configs"),
		origins: origins,
		envs:    envs,
	}
}

// Emit deletes the output root and regenerates the resource subtree of every
// application with a non-empty promotion graph.
func (e *Emitter) Emit(ctx context.Context, apps []app.Application) error {
	logger := logging.LoggerFromContext(ctx)

	if err := os.RemoveAll(e.root); err != nil {
		return fmt.Errorf("cleaning up %s: %w", e.root, err)
	}

	for _, a := range apps {
		stages := e.envs.BuildGraph(a.TargetEnvironments)
		if len(stages) == 0 {
			logger.Info(
				"skipping app with no targeted environments",
				"category", a.Category,
				"app", a.Name,
			)
			continue
		}
		if err := e.emitApp(ctx, a, stages); err != nil {
			return fmt.Errorf(
				"generating pipeline resources for %s: %w", a.Name, err,
			)
		}
	}

	return nil
}

func (e *Emitter) emitApp(
	ctx context.Context,
	a app.Application,
	stages []promotion.Stage,
) error {
	logger := logging.LoggerFromContext(ctx).WithValues(
		"category", a.Category,
		"app", a.Name,
	)

	appDir := filepath.Join(e.root, a.Name)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	resources := []struct {
		file  string
		build func(app.Application, []promotion.Stage) (any, error)
	}{
		{namespaceFile, e.buildNamespace},
		{projectFile, e.buildProject},
		{projectConfigFile, e.buildProjectConfig},
		{warehouseFile, e.buildWarehouse},
	}
	for _, res := range resources {
		obj, err := res.build(a, stages)
		if err != nil {
			return err
		}
		if err = e.writeResource(appDir, res.file, a, obj); err != nil {
			return err
		}
		logger.Debug("generated resource", "file", res.file)
	}

	if err := e.writeStages(appDir, a, stages); err != nil {
		return err
	}
	logger.Debug("generated resource", "file", stagesFile)

	return nil
}

func (e *Emitter) buildNamespace(a app.Application, _ []promotion.Stage) (any, error) {
	return &corev1.Namespace{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Namespace",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: a.Name,
			// Labeling (rather than creating) the namespace lets Kargo adopt
			// one that the app's own deployment already created.
			Labels: map[string]string{
				kargoapi.ProjectLabelKey: "true",
			},
		},
	}, nil
}

func (e *Emitter) buildProject(a app.Application, _ []promotion.Stage) (any, error) {
	return &kargoapi.Project{
		TypeMeta: metav1.TypeMeta{
			APIVersion: kargoapi.APIVersion,
			Kind:       "Project",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: a.Name,
		},
	}, nil
}

// buildProjectConfig enables auto-promotion for every stage except the entry
// stage, which requires a manual promotion to initiate the pipeline.
func (e *Emitter) buildProjectConfig(a app.Application, stages []promotion.Stage) (any, error) {
	var policies []kargoapi.PromotionPolicy
	for _, stage := range stages {
		if stage.Name == e.envs.Entry() {
			continue
		}
		policies = append(policies, kargoapi.PromotionPolicy{
			StageSelector: ptr.To(kargoapi.PromotionPolicySelector{
				Name: stage.Name,
			}),
			AutoPromotionEnabled: true,
		})
	}
	return &kargoapi.ProjectConfig{
		TypeMeta: metav1.TypeMeta{
			APIVersion: kargoapi.APIVersion,
			Kind:       "ProjectConfig",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      a.Name,
			Namespace: a.Name,
		},
		Spec: kargoapi.ProjectConfigSpec{
			PromotionPolicies: policies,
		},
	}, nil
}

func (e *Emitter) buildWarehouse(a app.Application, _ []promotion.Stage) (any, error) {
	includePath := a.SourcePath + "/**"
	if !doublestar.ValidatePattern(includePath) {
		return nil, fmt.Errorf("invalid include path pattern %q", includePath)
	}
	return &kargoapi.Warehouse{
		TypeMeta: metav1.TypeMeta{
			APIVersion: kargoapi.APIVersion,
			Kind:       "Warehouse",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      a.Name,
			Namespace: a.Name,
		},
		Spec: kargoapi.WarehouseSpec{
			Subscriptions: []kargoapi.RepoSubscription{{
				Git: &kargoapi.GitSubscription{
					RepoURL:      e.origins.SubscriptionRepoURL,
					Branch:       subscriptionBranch,
					IncludePaths: []string{includePath},
				},
			}},
		},
	}, nil
}

func (e *Emitter) buildStage(a app.Application, stage promotion.Stage) *kargoapi.Stage {
	sources := kargoapi.FreightSources{}
	if stage.Upstream == "" {
		// Entry stages take Freight directly from the Warehouse; promotion
		// into them is manual.
		sources.Direct = true
	} else {
		sources.Stages = []string{stage.Upstream}
		sources.AutoPromotionOptions = ptr.To(kargoapi.AutoPromotionOptions{
			SelectionPolicy: kargoapi.FreightSelectionPolicyMatchUpstream,
		})
	}

	var shard string
	if stage.Name != defaultShardEnvironment {
		shard = stage.Name
	}

	return &kargoapi.Stage{
		TypeMeta: metav1.TypeMeta{
			APIVersion: kargoapi.APIVersion,
			Kind:       "Stage",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      stage.Name,
			Namespace: a.Name,
		},
		Spec: kargoapi.StageSpec{
			Shard: shard,
			RequestedFreight: []kargoapi.FreightRequest{{
				Origin: kargoapi.FreightOrigin{
					Kind: kargoapi.FreightOriginKindWarehouse,
					Name: a.Name,
				},
				Sources: sources,
			}},
			PromotionTemplate: ptr.To(kargoapi.PromotionTemplate{
				Spec: kargoapi.PromotionTemplateSpec{
					Steps: []kargoapi.PromotionStep{{
						Uses: "argocd-update",
						Config: map[string]any{
							"apps": []map[string]any{{
								"name": a.Name,
							}},
						},
					}},
				},
			}),
		},
	}
}

func (e *Emitter) writeStages(
	appDir string,
	a app.Application,
	stages []promotion.Stage,
) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(resourceHeader, a.SourcePath))
	sb.WriteString(fmt.Sprintf(
		"#\n# Promotion flow: %s → (%s)\n",
		strings.Join(e.envs.Chain(), " → "),
		strings.Join(e.envs.FanOut(), ", "),
	))

	for i, stage := range stages {
		if i > 0 {
			sb.WriteString("---\n")
		}
		data, err := yaml.Marshal(e.buildStage(a, stage))
		if err != nil {
			return fmt.Errorf("marshaling stage %s: %w", stage.Name, err)
		}
		sb.Write(data)
	}

	path := filepath.Join(appDir, stagesFile)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (e *Emitter) writeResource(
	appDir, file string,
	a app.Application,
	obj any,
) error {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", file, err)
	}
	content := fmt.Sprintf(resourceHeader, a.SourcePath) + string(data)

	path := filepath.Join(appDir, file)
	if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
