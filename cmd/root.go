// Package cmd wires the CLI surface over the retrieval engine.
package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codesage/internal/config"
	"codesage/internal/embedder"
	"codesage/internal/llm"
	"codesage/internal/rag"
	"codesage/internal/scanner"
	"codesage/internal/store"
)

var (
	flagConfig    string
	flagDB        string
	flagOllama    string
	flagModel     string
	flagChatModel string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "codesage",
	Short: "Semantic search and Q&A over a local source tree",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default <root>/.codesage.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default <root>/.codesage/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "", "ollama base URL (default http://localhost:11434)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "embedding model (default nomic-embed-text)")
	rootCmd.PersistentFlags().StringVar(&flagChatModel, "chat-model", "", "generative model (default qwen2.5-coder:7b)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// loadConfig builds the process configuration for a root directory: file
// values over defaults, flag values over both.
func loadConfig(root string) (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = filepath.Join(root, ".codesage.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagOllama != "" {
		cfg.OllamaURL = flagOllama
	}
	if flagModel != "" {
		cfg.EmbedModel = flagModel
	}
	if flagChatModel != "" {
		cfg.ChatModel = flagChatModel
	}

	if err := cfg.Resolve(root); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newService assembles the engine for a resolved config. The caller owns the
// returned store and must Close it.
func newService(cfg config.Config) (*rag.Service, *store.SQLiteStore, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	log := slog.Default()
	sc := scanner.New(cfg.Root, log)
	embedClient := embedder.NewOllamaClient(cfg.OllamaURL, cfg.EmbedModel)
	pipeline := embedder.NewPipeline(embedClient, log)
	chat := llm.NewOllamaChat(cfg.OllamaURL, cfg.ChatModel)

	svc := rag.New(sc, st, pipeline, embedClient, chat, cfg, log)
	return svc, st, nil
}
