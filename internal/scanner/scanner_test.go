package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPaths(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	s := New(root, nil)
	results, err := s.ScanPaths(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results, 1)

	sum := sha256.Sum256([]byte("hello"))
	assert.Equal(t, path, results[0].Path)
	assert.Equal(t, hex.EncodeToString(sum[:]), results[0].Hash)
	require.Len(t, results[0].Chunks, 1)
	assert.Equal(t, "hello", results[0].Chunks[0].Text)
}

func TestScanPathsPairsResults(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for _, name := range []string{"a.md", "b.md", "c.md", "d.md"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.WriteFile(p, []byte("content of "+name), 0o644))
		paths = append(paths, p)
	}

	s := New(root, nil)
	results, err := s.ScanPaths(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, p := range paths {
		assert.Equal(t, p, results[i].Path)
	}
}

func TestScanPathsOversizedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "big.md")
	require.NoError(t, os.WriteFile(path, make([]byte, maxFileBytes+1), 0o644))

	s := New(root, nil)
	results, err := s.ScanPaths(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Skip sentinel: empty hash, no chunks, not an error.
	assert.Equal(t, path, results[0].Path)
	assert.Empty(t, results[0].Hash)
	assert.Empty(t, results[0].Chunks)
}

func TestScanPathsMissingFile(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "gone.md")

	s := New(root, nil)
	_, err := s.ScanPaths(context.Background(), []string{missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.md")
}

func TestScanPathsLossyDecode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bad.md")
	require.NoError(t, os.WriteFile(path, []byte{'o', 'k', 0xff, 'o', 'k'}, 0o644))

	s := New(root, nil)
	results, err := s.ScanPaths(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results[0].Chunks, 1)
	assert.Contains(t, results[0].Chunks[0].Text, "�")
	assert.NotEmpty(t, results[0].Hash)
}

func TestScanPathsEmptyFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "empty.md")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s := New(root, nil)
	results, err := s.ScanPaths(context.Background(), []string{path})
	require.NoError(t, err)
	assert.NotEmpty(t, results[0].Hash)
	assert.Empty(t, results[0].Chunks)
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a"), 0o644))

	s := New(root, nil)
	files, err := s.CollectFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestOverview(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))

	s := New(root, nil)
	overview := s.Overview(4, 400)
	assert.True(t, strings.HasPrefix(overview, "."))
	assert.Contains(t, overview, "pkg")
}
