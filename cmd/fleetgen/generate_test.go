package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCommand(t *testing.T) {
	writeApp := func(t *testing.T, root string) {
		t.Helper()
		dir := filepath.Join(root, "apps", "workloads", "echo")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "app-config.yaml"),
			[]byte("targetClusters: [test]\n"),
			0o600,
		))
	}

	t.Run("missing origin URL aborts before any output is written", func(t *testing.T) {
		t.Setenv("GIT_REPO_URL", "")
		t.Setenv("KARGO_GIT_REPO_URL", "")
		root := t.TempDir()
		writeApp(t, root)

		cmd := newGenerateCommand()
		cmd.SetArgs([]string{"--repo-root", root})
		err := cmd.ExecuteContext(context.Background())
		require.ErrorContains(t, err, "GIT_REPO_URL not set")

		_, err = os.Stat(filepath.Join(root, "apps", "clusters"))
		require.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(root, "apps", "kargo-configs"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("writes placements and pipeline resources", func(t *testing.T) {
		t.Setenv("GIT_REPO_URL", "https://github.com/example/fleet.git")
		t.Setenv("KARGO_GIT_REPO_URL", "")
		root := t.TempDir()
		writeApp(t, root)

		cmd := newGenerateCommand()
		cmd.SetArgs([]string{"--repo-root", root})
		require.NoError(t, cmd.ExecuteContext(context.Background()))

		require.FileExists(t, filepath.Join(
			root, "apps", "clusters", "test", "workloads", "echo", "app-config.yaml",
		))
		require.FileExists(t, filepath.Join(
			root, "apps", "kargo-configs", "echo", "stages.yaml",
		))
	})
}
