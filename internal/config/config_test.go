package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, 200, cfg.MaxFiles)
	assert.Equal(t, 50, cfg.TopK)
	assert.Contains(t, cfg.IncludePatterns, "*.go")
	assert.Contains(t, cfg.ExcludePatterns, "node_modules/**")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codesage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"embed_model: custom-embed\ntop_k: 10\ninclude_patterns:\n  - \"*.zig\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-embed", cfg.EmbedModel)
	assert.Equal(t, 10, cfg.TopK)
	assert.Equal(t, []string{"*.zig"}, cfg.IncludePatterns)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codesage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("top_k: [not an int"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.OllamaURL = "http://localhost:11434/"

	require.NoError(t, cfg.Resolve(root))
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, ".codesage", "index.db"), cfg.DBPath)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
}

func TestResolveKeepsExplicitDBPath(t *testing.T) {
	cfg := Default()
	cfg.DBPath = "/elsewhere/index.db"

	require.NoError(t, cfg.Resolve(t.TempDir()))
	assert.Equal(t, "/elsewhere/index.db", cfg.DBPath)
}

func TestResolveClampsBounds(t *testing.T) {
	cfg := Default()
	cfg.MaxFiles = -1
	cfg.TopK = 0

	require.NoError(t, cfg.Resolve(t.TempDir()))
	assert.Equal(t, 200, cfg.MaxFiles)
	assert.Equal(t, 50, cfg.TopK)
}
