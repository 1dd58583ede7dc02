// Package store persists embeddings and per-path content hashes in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the persistence surface the RAG service depends on. All
// operations are serialized: concurrent callers block rather than
// interleave, so a per-path delete is never visible half-applied.
type Store interface {
	// InsertEmbeddings upserts a batch by id in one transaction.
	InsertEmbeddings(ctx context.Context, batch []Embedding) error
	// GetAllEmbeddings returns the full corpus for query-time scoring.
	GetAllEmbeddings(ctx context.Context) ([]Embedding, error)
	// GetFileHash returns the stored hash for a path, or "" if not indexed.
	GetFileHash(ctx context.Context, path string) (string, error)
	// UpsertFileHash records the content hash for a path.
	UpsertFileHash(ctx context.Context, path, hash string) error
	// DeleteEmbeddingsForPath removes every embedding owned by a path.
	DeleteEmbeddingsForPath(ctx context.Context, path string) error
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store over a single SQLite connection.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open creates or opens the database at dbPath, creating parent directories
// on first use and running idempotent schema setup.
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One logical connection: SQLite wants a single writer, and the Store
	// contract promises serialized access.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) InsertEmbeddings(ctx context.Context, batch []Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO embeddings (id, vector, text, path) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.ExecContext(ctx, e.ID, encodeVector(e.Vector), e.Text, e.Path); err != nil {
			return fmt.Errorf("insert embedding %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetAllEmbeddings(ctx context.Context) ([]Embedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, vector, text, path FROM embeddings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Embedding
	for rows.Next() {
		var (
			e    Embedding
			blob []byte
		)
		if err := rows.Scan(&e.ID, &blob, &e.Text, &e.Path); err != nil {
			return nil, err
		}
		e.Vector, err = decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("embedding %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetFileHash(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM file_meta WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

func (s *SQLiteStore) UpsertFileHash(ctx context.Context, path, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO file_meta (path, hash) VALUES (?, ?)", path, hash)
	return err
}

func (s *SQLiteStore) DeleteEmbeddingsForPath(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM embeddings WHERE path = ?", path)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector serializes a vector as little-endian float32 words.
func encodeVector(v []float32) []byte {
	blob := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(f))
	}
	return blob
}

// decodeVector is the inverse of encodeVector. A blob whose length is not a
// multiple of 4 is corrupt and surfaces as a store error.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed vector blob: %d bytes", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}
