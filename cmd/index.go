package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codesage/internal/watch"
)

var flagWatch bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a codebase for semantic search",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		root, err := filepath.Abs(target)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		svc, st, err := newService(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()

		fmt.Printf("Indexing %s...\n", root)
		start := time.Now()
		stats, err := svc.BuildIndex(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Files:  %d selected, %d changed\n", stats.FilesSelected, stats.FilesChanged)
		fmt.Printf("  Chunks: %d embedded\n", stats.ChunksQueued)

		if !flagWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Watching for changes (ctrl-c to stop)...")
		w := watch.New(root, time.Duration(cfg.WatchDebounceMs)*time.Millisecond,
			func(ctx context.Context) {
				stats, err := svc.BuildIndex(ctx)
				if err != nil {
					fmt.Fprintf(os.Stderr, "reindex failed: %v\n", err)
					return
				}
				if stats.ChunksQueued > 0 {
					fmt.Printf("Reindexed: %d files changed, %d chunks\n",
						stats.FilesChanged, stats.ChunksQueued)
				}
			}, nil)

		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagWatch, "watch", false, "keep running and reindex on file changes")
	rootCmd.AddCommand(indexCmd)
}
