package embedder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend counts calls and tracks peak concurrency.
type fakeBackend struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	peak     int
	delay    time.Duration
	failOn   string
}

func (f *fakeBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.failOn != "" && text == f.failOn {
		return nil, errors.New("backend unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func inputsN(n int) []Input {
	out := make([]Input, n)
	for i := range out {
		out[i] = Input{
			ID:   fmt.Sprintf("f.md:%d", i),
			Path: "f.md",
			Text: fmt.Sprintf("chunk number %d", i),
		}
	}
	return out
}

func TestGeneratePreservesInputFields(t *testing.T) {
	backend := &fakeBackend{}
	p := NewPipeline(backend, nil)

	inputs := inputsN(3)
	out, err := p.Generate(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, e := range out {
		assert.Equal(t, inputs[i].ID, e.ID)
		assert.Equal(t, inputs[i].Path, e.Path)
		assert.Equal(t, inputs[i].Text, e.Text)
		assert.NotEmpty(t, e.Vector)
	}
}

func TestGenerateBoundsConcurrency(t *testing.T) {
	backend := &fakeBackend{delay: 2 * time.Millisecond}
	p := NewPipeline(backend, nil)

	_, err := p.Generate(context.Background(), inputsN(100))
	require.NoError(t, err)

	assert.Equal(t, 100, backend.calls)
	assert.LessOrEqual(t, backend.peak, maxInFlight)
}

func TestGenerateFailsFast(t *testing.T) {
	backend := &fakeBackend{failOn: "chunk number 2"}
	p := NewPipeline(backend, nil)

	_, err := p.Generate(context.Background(), inputsN(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f.md:2")
}

func TestGenerateEmptyInput(t *testing.T) {
	p := NewPipeline(&fakeBackend{}, nil)
	out, err := p.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateCacheHitSkipsBackend(t *testing.T) {
	backend := &fakeBackend{}
	p := NewPipeline(backend, nil)
	ctx := context.Background()

	in := []Input{{ID: "a.md:0", Path: "a.md", Text: "same text"}}
	first, err := p.Generate(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 1, backend.calls)

	second, err := p.Generate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls, "cached text must not hit the backend again")
	assert.Equal(t, first[0].Vector, second[0].Vector)
}
