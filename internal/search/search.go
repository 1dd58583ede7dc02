// Package search scores stored embeddings against a query vector.
//
// Scoring is a brute-force cosine scan over the full corpus; at the corpus
// sizes this tool targets, a linear pass beats maintaining an index
// structure. Selection uses a bounded min-heap so only k candidates are
// kept resident.
package search

import (
	"container/heap"
	"math"
	"sort"

	"codesage/internal/store"
)

// Cosine returns the cosine similarity of a and b. Mismatched dimensions or
// a zero-norm vector score 0 rather than propagating a numeric fault.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// FindRelevantChunks returns the texts of the k corpus entries most similar
// to query, ordered by descending similarity. The result is exactly what
// sorting the whole corpus and taking the first k would produce; ties keep
// corpus order.
func FindRelevantChunks(query []float32, corpus []store.Embedding, k int) []string {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}

	h := make(candidateHeap, 0, k)
	for i := range corpus {
		c := candidate{score: Cosine(query, corpus[i].Vector), index: i}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		// Replace the current worst candidate; an equal score never
		// displaces an earlier entry, which keeps ties stable.
		if c.score > h[0].score {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}

	sort.Slice(h, func(i, j int) bool {
		if h[i].score != h[j].score {
			return h[i].score > h[j].score
		}
		return h[i].index < h[j].index
	})

	texts := make([]string, len(h))
	for i, c := range h {
		texts[i] = corpus[c.index].Text
	}
	return texts
}

type candidate struct {
	score float64
	index int
}

// candidateHeap is a min-heap whose root is the weakest kept candidate:
// lowest score first, and among equal scores the latest corpus index.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].index > h[j].index
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
