package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	triggered := make(chan struct{}, 16)

	w := New(root, 50*time.Millisecond, func(ctx context.Context) {
		triggered <- struct{}{}
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the tree.
	time.Sleep(100 * time.Millisecond)

	// A burst of writes should collapse into one callback.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("v"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-triggered:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired")
	}

	select {
	case <-triggered:
		t.Fatal("burst produced more than one callback")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "gone"), time.Millisecond, func(context.Context) {}, nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}
