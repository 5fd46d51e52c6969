package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRepoRoot(t *testing.T) {
	t.Run("explicit repo root", func(t *testing.T) {
		root := t.TempDir()
		opts := &generatorOptions{RepoRoot: root}
		resolved, err := opts.resolveRepoRoot()
		require.NoError(t, err)
		require.Equal(t, root, resolved)
	})

	t.Run("explicit repo root must be a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not-a-dir")
		require.NoError(t, os.WriteFile(file, []byte{}, 0o600))
		opts := &generatorOptions{RepoRoot: file}
		_, err := opts.resolveRepoRoot()
		require.ErrorContains(t, err, "is not a directory")
	})

	t.Run("discovered from working directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "apps"), 0o755))
		t.Chdir(filepath.Join(root, "apps"))

		opts := &generatorOptions{}
		resolved, err := opts.resolveRepoRoot()
		require.NoError(t, err)
		// Resolve symlinks so the comparison survives tmpdir indirection.
		expected, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		actual, err := filepath.EvalSymlinks(resolved)
		require.NoError(t, err)
		require.Equal(t, expected, actual)
	})
}
