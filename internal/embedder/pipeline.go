package embedder

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"codesage/internal/chunker"
	"codesage/internal/store"
)

const (
	batchSize   = 32
	maxInFlight = 8

	defaultCacheSize = 10000
)

// Input is one text queued for embedding. ID and Path are carried through
// unchanged into the resulting store.Embedding.
type Input struct {
	ID   string
	Path string
	Text string
}

// TextEmbedder is the single-text embedding capability the pipeline fans
// out over.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Pipeline batches embedding work against a backend. Batches run strictly
// one after another; within a batch at most maxInFlight calls are
// outstanding. Any failed call fails the whole Generate — callers retry the
// indexing pass rather than patching partial output.
type Pipeline struct {
	client TextEmbedder
	cache  *lru.Cache[string, []float32]
	log    *slog.Logger
}

// NewPipeline wraps client with batching and an LRU cache keyed by content
// hash, so re-embedding identical text within a process is free.
func NewPipeline(client TextEmbedder, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	cache, _ := lru.New[string, []float32](defaultCacheSize)
	return &Pipeline{client: client, cache: cache, log: log}
}

// Generate embeds every input, preserving id/path/text in the output. The
// output has the same length and order as inputs.
func (p *Pipeline) Generate(ctx context.Context, inputs []Input) ([]store.Embedding, error) {
	out := make([]store.Embedding, len(inputs))

	for start := 0; start < len(inputs); start += batchSize {
		end := start + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		p.log.Debug("embedding batch", "from", start, "to", end, "total", len(inputs))
		if err := p.generateBatch(ctx, inputs[start:end], out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pipeline) generateBatch(ctx context.Context, inputs []Input, out []store.Embedding) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for i, in := range inputs {
		g.Go(func() error {
			vector, err := p.embedOne(gctx, in.Text)
			if err != nil {
				return fmt.Errorf("embed %s: %w", in.ID, err)
			}
			out[i] = store.Embedding{
				ID:     in.ID,
				Vector: vector,
				Text:   in.Text,
				Path:   in.Path,
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) embedOne(ctx context.Context, text string) ([]float32, error) {
	key := chunker.HashText(text)
	if cached, ok := p.cache.Get(key); ok {
		// Copy so callers can't mutate the cached vector.
		v := make([]float32, len(cached))
		copy(v, cached)
		return v, nil
	}

	vector, err := p.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, vector)
	return vector, nil
}
