// Package chunker splits decoded file text into retrievable segments.
//
// The primary strategy accumulates blank-line-separated paragraphs and
// flushes on paragraph boundaries; text that produces no paragraph chunks
// falls back to a fixed-size sliding window. Both strategies drop chunks
// whose content was already seen within the file.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	maxChunkSize = 2000
	minChunkSize = 500

	windowSize    = 1000
	windowOverlap = 200
)

// Chunk is a bounded span of a file's text. StartOffset is the byte position
// of the chunk's first paragraph (or window) in the original text; it is
// provenance for display, not a contract for re-slicing the source.
type Chunk struct {
	Path        string
	Text        string
	StartOffset int
}

// HashText returns the hex digest used for chunk and file-content identity.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Split chunks text on paragraph boundaries, falling back to a sliding
// window when paragraph chunking yields nothing.
func Split(text, path string) []Chunk {
	chunks := splitParagraphs(text, path)
	if len(chunks) == 0 {
		return splitWindowed(text, path)
	}
	return chunks
}

type paragraph struct {
	text   string
	offset int
}

// paragraphs splits on blank lines, keeping each paragraph's byte offset.
func paragraphs(text string) []paragraph {
	var out []paragraph
	offset := 0
	for _, p := range strings.Split(text, "\n\n") {
		out = append(out, paragraph{text: p, offset: offset})
		offset += len(p) + 2
	}
	return out
}

func splitParagraphs(text, path string) []Chunk {
	var chunks []Chunk
	seen := make(map[string]struct{})

	var buf strings.Builder
	bufStart := 0

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		body := buf.String()
		if h := HashText(body); !seenBefore(seen, h) {
			chunks = append(chunks, Chunk{Path: path, Text: body, StartOffset: bufStart})
		}
		buf.Reset()
	}

	for _, p := range paragraphs(text) {
		// Flush before the buffer would overflow, always on a
		// paragraph boundary.
		if buf.Len() > 0 && buf.Len()+len(p.text) > maxChunkSize {
			flush()
		}

		if buf.Len() == 0 {
			bufStart = p.offset
		} else {
			buf.WriteString("\n\n")
		}
		buf.WriteString(p.text)

		if buf.Len() >= minChunkSize {
			flush()
		}
	}
	flush()

	return chunks
}

// splitWindowed produces fixed-size chunks with overlap, snapping window
// edges to UTF-8 rune boundaries so no chunk starts or ends mid-rune.
func splitWindowed(text, path string) []Chunk {
	if len(text) == 0 {
		return nil
	}

	var chunks []Chunk
	seen := make(map[string]struct{})
	start := 0

	for start < len(text) {
		end := start + windowSize
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}

		body := text[start:end]
		if h := HashText(body); !seenBefore(seen, h) {
			chunks = append(chunks, Chunk{Path: path, Text: body, StartOffset: start})
		}

		if end == len(text) {
			break
		}
		next := end - windowOverlap
		if next < 0 {
			next = 0
		}
		for next > 0 && !utf8.RuneStart(text[next]) {
			next--
		}
		start = next
	}
	return chunks
}

// seenBefore records h in seen and reports whether it was already present.
func seenBefore(seen map[string]struct{}, h string) bool {
	if _, ok := seen[h]; ok {
		return true
	}
	seen[h] = struct{}{}
	return false
}
