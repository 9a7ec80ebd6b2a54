package chunker

import (
	"strings"

	"chefrag/internal/domain"
)

const (
	defaultChunkSize = 500
	defaultOverlap   = 50
)

// WindowChunker slides a fixed-width character window across the text.
// Deterministic and dependency-free; it is also the fallback strategy when
// semantic chunking cannot produce passages.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a window chunker. Non-positive size or negative
// overlap fall back to the defaults.
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultOverlap
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Chunk splits text using the configured window size and overlap.
func (c *WindowChunker) Chunk(text string) ([]domain.Passage, error) {
	return Window(text, c.size, c.overlap), nil
}

// Window splits text into trimmed passages of at most size characters,
// advancing the window start by size-overlap each step. The next start is
// clamped so that overlap >= size cannot stall or walk the window
// backward. Empty windows are dropped.
func Window(text string, size, overlap int) []domain.Passage {
	if size <= 0 {
		return nil
	}

	runes := []rune(text)
	var passages []domain.Passage

	start := 0
	for start < len(runes) {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			passages = append(passages, domain.Passage{Text: piece, Index: len(passages)})
		}

		if end == len(runes) {
			break
		}

		next := end - overlap
		if next < 0 {
			next = 0
		}
		if next <= start {
			// Degenerate overlap; skip it for this step to keep moving.
			next = end
		}
		start = next
	}

	return passages
}
