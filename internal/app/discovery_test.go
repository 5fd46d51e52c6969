package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitopslab/fleetgen/internal/promotion"
)

func writeDeclaration(t *testing.T, repoRoot, category, name, content string) {
	t.Helper()
	dir := filepath.Join(repoRoot, "apps", category, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(
		t,
		os.WriteFile(filepath.Join(dir, DeclarationFile), []byte(content), 0o600),
	)
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()
	envs := promotion.DefaultEnvironments()

	testCases := []struct {
		name       string
		setup      func(*testing.T) string
		assertions func(*testing.T, []Application, error)
	}{
		{
			name: "no category roots at all",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Empty(t, apps)
			},
		},
		{
			name: "workloads and infra discovered in order",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(t, root, CategoryWorkloads, "echo", "targetClusters: [test, staging]\n")
				writeDeclaration(t, root, CategoryInfra, "cert-manager", "targetClusters: [infra]\n")
				return root
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Equal(t, []Application{
					{
						Name:               "echo",
						Category:           CategoryWorkloads,
						SourcePath:         "apps/workloads/echo",
						TargetEnvironments: []string{"test", "staging"},
					},
					{
						Name:               "cert-manager",
						Category:           CategoryInfra,
						SourcePath:         "apps/infra/cert-manager",
						TargetEnvironments: []string{"infra"},
					},
				}, apps)
			},
		},
		{
			name: "directory without declaration is skipped",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				require.NoError(
					t,
					os.MkdirAll(filepath.Join(root, "apps", CategoryWorkloads, "no-config"), 0o755),
				)
				writeDeclaration(t, root, CategoryWorkloads, "echo", "targetClusters: [test]\n")
				return root
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Len(t, apps, 1)
				require.Equal(t, "echo", apps[0].Name)
			},
		},
		{
			name: "argocd self-management entry is excluded",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(t, root, CategoryInfra, "argocd", "targetClusters: [test]\n")
				writeDeclaration(t, root, CategoryInfra, "ingress", "targetClusters: [test]\n")
				return root
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Len(t, apps, 1)
				require.Equal(t, "ingress", apps[0].Name)
			},
		},
		{
			name: "argocd name is only reserved for infra",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(t, root, CategoryWorkloads, "argocd", "targetClusters: [test]\n")
				return root
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Len(t, apps, 1)
				require.Equal(t, CategoryWorkloads, apps[0].Category)
			},
		},
		{
			name: "missing targetClusters means empty target set",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(t, root, CategoryWorkloads, "echo", "# nothing declared\n")
				return root
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Len(t, apps, 1)
				require.Empty(t, apps[0].TargetEnvironments)
			},
		},
		{
			name: "unknown declaration fields are ignored",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(
					t, root, CategoryWorkloads, "echo",
					"targetClusters: [test]\nchartVersion: 1.2.3\n",
				)
				return root
			},
			assertions: func(t *testing.T, apps []Application, err error) {
				require.NoError(t, err)
				require.Len(t, apps, 1)
				require.Equal(t, []string{"test"}, apps[0].TargetEnvironments)
			},
		},
		{
			name: "unparsable declaration is a hard error",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(t, root, CategoryWorkloads, "echo", "targetClusters: {not: [a, list\n")
				return root
			},
			assertions: func(t *testing.T, _ []Application, err error) {
				require.ErrorContains(t, err, "unmarshaling declaration")
				require.ErrorContains(t, err, "echo")
			},
		},
		{
			name: "unknown target environment is a hard error",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeDeclaration(t, root, CategoryWorkloads, "echo", "targetClusters: [test, prod-mars]\n")
				return root
			},
			assertions: func(t *testing.T, _ []Application, err error) {
				require.ErrorContains(t, err, `unknown target environment "prod-mars"`)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			apps, err := Discover(ctx, testCase.setup(t), envs)
			testCase.assertions(t, apps, err)
		})
	}
}
