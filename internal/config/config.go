package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the immutable process configuration. It is built once in cmd/
// and handed to the RAG service; engine packages never read the environment
// themselves.
type Config struct {
	Root            string   `yaml:"root"`
	DBPath          string   `yaml:"db"`
	OllamaURL       string   `yaml:"ollama_url"`
	EmbedModel      string   `yaml:"embed_model"`
	ChatModel       string   `yaml:"chat_model"`
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MaxFiles        int      `yaml:"max_files"`
	TopK            int      `yaml:"top_k"`
	WatchDebounceMs int      `yaml:"watch_debounce_ms"`
}

// Default returns the configuration used when no config file is present.
// Paths are resolved relative to root once root is known.
func Default() Config {
	return Config{
		OllamaURL:  "http://localhost:11434",
		EmbedModel: "nomic-embed-text",
		ChatModel:  "qwen2.5-coder:7b",
		IncludePatterns: []string{
			"*.rs", "*.js", "*.ts", "*.py", "*.java", "*.go", "*.md", "*.toml", "*.json",
		},
		ExcludePatterns: []string{
			"target/**", "node_modules/**", "*.lock", ".git/**",
			"__pycache__/**", "*.pyc", "dist/**", "build/**", ".next/**", ".cache/**",
		},
		MaxFiles:        200,
		TopK:            50,
		WatchDebounceMs: 500,
	}
}

// Load reads a YAML config file and merges it over the defaults. A missing
// file is not an error; an unreadable or malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Resolve fills in root-dependent defaults and normalizes paths. It must be
// called before the config is handed to the service.
func (c *Config) Resolve(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	c.Root = abs
	if c.DBPath == "" {
		c.DBPath = filepath.Join(abs, ".codesage", "index.db")
	}
	c.OllamaURL = strings.TrimRight(c.OllamaURL, "/")
	if c.MaxFiles <= 0 {
		c.MaxFiles = 200
	}
	if c.TopK <= 0 {
		c.TopK = 50
	}
	return nil
}
