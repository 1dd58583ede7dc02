// Package scanner turns file paths into hashed, chunked scan results.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"codesage/internal/chunker"
	"codesage/internal/walker"
)

// maxFileBytes caps per-file scanning to keep indexing responsive (2 MiB).
const maxFileBytes = 2 << 20

// ScannedFile is the result of scanning one path. An empty Hash with no
// Chunks means the file was intentionally skipped for size, which is not an
// error; a read failure fails the scan instead.
type ScannedFile struct {
	Path   string
	Hash   string
	Chunks []chunker.Chunk
}

// Scanner discovers and scans files under a root directory.
type Scanner struct {
	root string
	log  *slog.Logger
}

func New(root string, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{root: root, log: log}
}

// CollectFiles enumerates eligible files under the scanner's root.
func (s *Scanner) CollectFiles() ([]string, error) {
	return walker.CollectFiles(s.root)
}

// Overview renders the bounded directory tree under the scanner's root.
func (s *Scanner) Overview(maxDepth, maxEntries int) string {
	return walker.DirectoryOverview(s.root, maxDepth, maxEntries)
}

// ScanPaths scans every path in parallel across a worker group sized to the
// available cores. The result slice pairs one entry per input path; callers
// must not rely on any ordering beyond that pairing. Any read error fails
// the whole scan.
func (s *Scanner) ScanPaths(ctx context.Context, paths []string) ([]ScannedFile, error) {
	results := make([]ScannedFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sf, err := s.scanFile(path)
			if err != nil {
				return fmt.Errorf("scan %s: %w", path, err)
			}
			results[i] = sf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Scanner) scanFile(path string) (ScannedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ScannedFile{}, err
	}
	if info.Size() > maxFileBytes {
		s.log.Warn("skipping oversized file", "path", path, "bytes", info.Size())
		return ScannedFile{Path: path}, nil
	}

	var sf ScannedFile
	err = withMappedFile(path, func(data []byte) error {
		sum := sha256.Sum256(data)
		// Lossy decode: malformed sequences are replaced, never fatal.
		content := strings.ToValidUTF8(string(data), "�")
		sf = ScannedFile{
			Path:   path,
			Hash:   hex.EncodeToString(sum[:]),
			Chunks: chunker.Split(content, path),
		}
		return nil
	})
	if err != nil {
		return ScannedFile{}, err
	}
	return sf, nil
}
