package store

// Embedding is one stored chunk: its identity, vector, embedded text, and
// owning source path. ID uniquely determines the row; re-insertion
// overwrites.
type Embedding struct {
	ID     string
	Vector []float32
	Text   string
	Path   string
}
