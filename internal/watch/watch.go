// Package watch re-runs indexing when files under the root change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"codesage/internal/walker"
)

// Watcher observes a source tree and invokes a callback after filesystem
// activity settles. Events are debounced so one save burst triggers one
// reindex.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(ctx context.Context)
	log      *slog.Logger
}

func New(root string, debounce time.Duration, onChange func(ctx context.Context), log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{root: root, debounce: debounce, onChange: onChange, log: log}
}

// Run watches until ctx is cancelled. Directories created while watching are
// added to the watch set; ignored directories are never watched.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched too; addTree no-ops on
				// plain files.
				if !walker.IsIgnoredDir(filepath.Base(event.Name)) {
					_ = w.addTree(fw, event.Name)
				}
			}
			w.log.Debug("fs event", "op", event.Op.String(), "path", event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// addTree registers every non-ignored directory under path. A plain file or
// an unreadable subtree is skipped silently.
func (w *Watcher) addTree(fw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == w.root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if walker.IsIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			w.log.Warn("cannot watch directory", "path", p, "err", err)
		}
		return nil
	})
}
