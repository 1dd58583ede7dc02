package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "notes.txt"), "not indexed")
	writeFile(t, filepath.Join(root, "docs", "readme.md"), "# hi")
	writeFile(t, filepath.Join(root, "node_modules", "dep.js"), "ignored dir")
	writeFile(t, filepath.Join(root, ".git", "config.json"), "ignored dir")

	files, err := CollectFiles(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "main.go"),
		filepath.Join(root, "docs", "readme.md"),
	}, files)
}

func TestCollectFilesMissingRoot(t *testing.T) {
	_, err := CollectFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestCollectFilesSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.go"), "package real")
	require.NoError(t, os.Symlink(
		filepath.Join(root, "real.go"),
		filepath.Join(root, "link.go"),
	))

	files, err := CollectFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "real.go")}, files)
}

func TestDirectoryOverview(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alpha"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "beta", "gamma"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	overview := DirectoryOverview(root, 8, 100)
	lines := strings.Split(overview, "\n")

	assert.Equal(t, ".", lines[0])
	assert.Contains(t, lines, "  alpha")
	assert.Contains(t, lines, "  beta")
	assert.Contains(t, lines, "    "+filepath.Join("beta", "gamma"))
	assert.NotContains(t, overview, "node_modules")
}

func TestDirectoryOverviewDepthBound(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0o755))

	overview := DirectoryOverview(root, 1, 100)
	assert.Contains(t, overview, "a")
	assert.NotContains(t, overview, filepath.Join("a", "b"))
}

func TestDirectoryOverviewEntryBound(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}

	overview := DirectoryOverview(root, 8, 2)
	assert.Len(t, strings.Split(overview, "\n"), 2)
}

func TestDirectoryOverviewStable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "x"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "y"), 0o755))

	assert.Equal(t, DirectoryOverview(root, 4, 400), DirectoryOverview(root, 4, 400))
}

func TestIsIgnoredDir(t *testing.T) {
	assert.True(t, IsIgnoredDir(".git"))
	assert.True(t, IsIgnoredDir("node_modules"))
	assert.False(t, IsIgnoredDir("src"))
}
