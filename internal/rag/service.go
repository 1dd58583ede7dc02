// Package rag coordinates scanning, diffing, embedding, and retrieval.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codesage/internal/chunker"
	"codesage/internal/config"
	"codesage/internal/embedder"
	"codesage/internal/scanner"
	"codesage/internal/search"
	"codesage/internal/store"
)

// overviewPath is the synthetic pseudo-path under which the directory
// overview chunk is tracked, hash row included, exactly like a real file.
const overviewPath = "__dir_overview__"

// noContextMessage is returned instead of calling the completion backend
// when retrieval produced nothing.
const noContextMessage = "No relevant code context found for this query."

// Overview bounds: a compact tree is embedded at index time, a deeper one is
// prepended at query time for project-level questions.
const (
	indexOverviewDepth   = 4
	indexOverviewEntries = 400
	queryOverviewDepth   = 8
	queryOverviewEntries = 2000
)

// EmbeddingGenerator is the batched embedding capability (the pipeline).
type EmbeddingGenerator interface {
	Generate(ctx context.Context, inputs []embedder.Input) ([]store.Embedding, error)
}

// Completer is the text-generation capability consumed once per query.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuestionClassifier decides whether a question is project-level, which
// pulls the README and directory overview into the context. It is a
// replaceable strategy so tests can pin the outcome.
type QuestionClassifier func(question string) bool

// IsProjectQuestion is the default classifier.
func IsProjectQuestion(question string) bool {
	lower := strings.ToLower(question)
	return strings.Contains(lower, "project") || strings.Contains(lower, "what is")
}

// IndexStats summarizes one indexing pass.
type IndexStats struct {
	FilesSelected int
	FilesChanged  int
	ChunksQueued  int
}

// Service is the index orchestrator: it selects files, diffs hashes against
// the store, drives re-embedding for changed content only, and assembles
// retrieval context for queries.
type Service struct {
	scanner  *scanner.Scanner
	store    store.Store
	pipeline EmbeddingGenerator
	embed    embedder.TextEmbedder
	complete Completer
	cfg      config.Config
	log      *slog.Logger

	// Classifier may be replaced before use; it defaults to
	// IsProjectQuestion.
	Classifier QuestionClassifier
}

func New(sc *scanner.Scanner, st store.Store, pipeline EmbeddingGenerator,
	embed embedder.TextEmbedder, complete Completer, cfg config.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		scanner:    sc,
		store:      st,
		pipeline:   pipeline,
		embed:      embed,
		complete:   complete,
		cfg:        cfg,
		log:        log,
		Classifier: IsProjectQuestion,
	}
}

// BuildIndex indexes every eligible file under the root, subject to the
// configured include/exclude patterns.
func (s *Service) BuildIndex(ctx context.Context) (IndexStats, error) {
	return s.BuildIndexForKeywords(ctx, nil)
}

// BuildIndexForKeywords indexes a keyword-narrowed candidate set. Narrowing
// is best-effort: if it would eliminate every file, the unfiltered set is
// used. The final set is capped at the configured file limit, preferring
// paths that match more keywords.
func (s *Service) BuildIndexForKeywords(ctx context.Context, keywords []string) (IndexStats, error) {
	files, err := s.scanner.CollectFiles()
	if err != nil {
		return IndexStats{}, fmt.Errorf("collect files: %w", err)
	}

	files = FilterByPatterns(files, s.cfg.IncludePatterns, s.cfg.ExcludePatterns)

	if len(keywords) > 0 {
		if relevant := filterRelevantKeywords(keywords); len(relevant) > 0 {
			var narrowed []string
			for _, path := range files {
				if pathMatchesAny(path, relevant) {
					narrowed = append(narrowed, path)
				}
			}
			if len(narrowed) > 0 {
				files = narrowed
			}
		}
	}

	if len(files) > s.cfg.MaxFiles {
		files = capByKeywordDensity(files, keywords, s.cfg.MaxFiles)
	}

	return s.buildIndexWithFiles(ctx, files)
}

func (s *Service) buildIndexWithFiles(ctx context.Context, files []string) (IndexStats, error) {
	stats := IndexStats{FilesSelected: len(files)}
	s.log.Info("scanning files", "count", len(files))

	var inputs []embedder.Input

	// The directory overview is tracked like any file, under a synthetic
	// path, so layout changes re-embed it and nothing else.
	if overview := s.scanner.Overview(indexOverviewDepth, indexOverviewEntries); overview != "" {
		hash := chunker.HashText(overview)
		prev, err := s.store.GetFileHash(ctx, overviewPath)
		if err != nil {
			return stats, err
		}
		if prev != hash {
			if err := s.store.DeleteEmbeddingsForPath(ctx, overviewPath); err != nil {
				return stats, err
			}
			inputs = append(inputs, embedder.Input{
				ID:   overviewPath + ":" + hash,
				Path: overviewPath,
				Text: "DIRECTORY TREE:\n" + overview,
			})
			if err := s.store.UpsertFileHash(ctx, overviewPath, hash); err != nil {
				return stats, err
			}
		}
	}

	scans, err := s.scanner.ScanPaths(ctx, files)
	if err != nil {
		return stats, err
	}

	for _, scan := range scans {
		if scan.Hash == "" || len(scan.Chunks) == 0 {
			continue
		}

		prev, err := s.store.GetFileHash(ctx, scan.Path)
		if err != nil {
			return stats, err
		}
		if prev == scan.Hash {
			continue
		}

		// Changed file: drop its old embeddings, queue every new chunk,
		// then commit the new hash. File-by-file, so a mid-run failure
		// leaves completed files fully migrated and at worst the in-flight
		// file pending a re-embed on retry.
		if err := s.store.DeleteEmbeddingsForPath(ctx, scan.Path); err != nil {
			return stats, err
		}
		for _, chunk := range scan.Chunks {
			inputs = append(inputs, embedder.Input{
				ID:   fmt.Sprintf("%s:%d", chunk.Path, chunk.StartOffset),
				Path: chunk.Path,
				Text: fmt.Sprintf("FILE: %s\nOFFSET: %d\n%s", chunk.Path, chunk.StartOffset, chunk.Text),
			})
		}
		if err := s.store.UpsertFileHash(ctx, scan.Path, scan.Hash); err != nil {
			return stats, err
		}
		stats.FilesChanged++
	}

	stats.ChunksQueued = len(inputs)
	if len(inputs) == 0 {
		s.log.Info("index up to date")
		return stats, nil
	}

	s.log.Info("generating embeddings", "chunks", len(inputs))
	embeddings, err := s.pipeline.Generate(ctx, inputs)
	if err != nil {
		return stats, err
	}
	if err := s.store.InsertEmbeddings(ctx, embeddings); err != nil {
		return stats, fmt.Errorf("store embeddings: %w", err)
	}
	s.log.Info("indexing complete", "chunks", len(inputs))
	return stats, nil
}

// Query answers a question from the indexed corpus.
func (s *Service) Query(ctx context.Context, question string) (string, error) {
	return s.QueryWithFeedback(ctx, question, "")
}

// QueryWithFeedback answers a question, folding prior user feedback into the
// prompt so a retry can course-correct the backend.
func (s *Service) QueryWithFeedback(ctx context.Context, question, feedback string) (string, error) {
	queryVector, err := s.embed.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	corpus, err := s.store.GetAllEmbeddings(ctx)
	if err != nil {
		return "", fmt.Errorf("load corpus: %w", err)
	}

	chunks := search.FindRelevantChunks(queryVector, corpus, s.cfg.TopK)

	if s.Classifier(question) {
		if readme, err := os.ReadFile(filepath.Join(s.cfg.Root, "README.md")); err == nil {
			chunks = append([]string{"FILE: README.md\n" + string(readme)}, chunks...)
		}
		if overview := s.scanner.Overview(queryOverviewDepth, queryOverviewEntries); overview != "" {
			chunks = append([]string{"DIRECTORY TREE:\n" + overview}, chunks...)
		}
	}

	contextBlock := strings.Join(chunks, "\n\n")
	if contextBlock == "" {
		return noContextMessage, nil
	}

	return s.complete.Complete(ctx, buildPrompt(question, feedback, contextBlock))
}

func buildPrompt(question, feedback, contextBlock string) string {
	feedbackPart := ""
	if feedback != "" {
		feedbackPart = "\n\nUser feedback for improvement: " + feedback
	}
	return fmt.Sprintf("You are an expert software engineer. Based on the provided code context and directory structure, %s%s \n\nContext:\n%s\n\nProvide a concise summary that includes:\n- Project purpose\n- Main features\n- Technologies used\n- Architecture\n- Complete directory structure (copy exactly from the DIRECTORY TREE section in the context)\n\nBe accurate and base your answer only on the provided context. Do not invent or modify the directory structure.",
		question, feedbackPart, contextBlock)
}

func pathMatchesAny(path string, keywords []string) bool {
	lower := strings.ToLower(path)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// capByKeywordDensity trims the candidate set to limit, keeping the paths
// that contain the most keywords. The sort is stable so equally-scored
// paths keep discovery order.
func capByKeywordDensity(files, keywords []string, limit int) []string {
	scores := make(map[string]int, len(files))
	for _, path := range files {
		if len(keywords) == 0 {
			scores[path] = 1
			continue
		}
		lower := strings.ToLower(path)
		n := 0
		for _, k := range keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				n++
			}
		}
		scores[path] = n
	}

	capped := make([]string, len(files))
	copy(capped, files)
	sort.SliceStable(capped, func(i, j int) bool {
		return scores[capped[i]] > scores[capped[j]]
	})
	return capped[:limit]
}
