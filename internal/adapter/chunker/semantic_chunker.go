package chunker

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"chefrag/internal/domain"
	"chefrag/internal/port"
)

// ErrEncoderShape reports an encoder response that does not have exactly
// one embedding row per input sentence. Callers are expected to fall back
// to window chunking when they see it.
var ErrEncoderShape = errors.New("encoder returned mismatched embedding shape")

const (
	defaultSimilarityThreshold = 0.65
	defaultMinChunkChars       = 40
)

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// SemanticChunker groups consecutive sentences while they remain
// semantically coherent, judged by cosine similarity between each sentence
// and its immediate predecessor. Embeddings come from an externally
// supplied Encoder; the chunker never loads models itself.
type SemanticChunker struct {
	encoder   port.Encoder
	threshold float64
	minChars  int
}

// NewSemanticChunker creates a semantic chunker. A non-positive threshold
// or minChars falls back to the defaults (0.65 and 40).
func NewSemanticChunker(encoder port.Encoder, threshold float64, minChars int) *SemanticChunker {
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}
	if minChars <= 0 {
		minChars = defaultMinChunkChars
	}
	return &SemanticChunker{
		encoder:   encoder,
		threshold: threshold,
		minChars:  minChars,
	}
}

// Chunk splits text into similarity-coherent passages. Encoder failures
// and shape mismatches surface as errors rather than being swallowed; the
// composition layer decides whether to fall back to window chunking.
func (c *SemanticChunker) Chunk(text string) ([]domain.Passage, error) {
	cleaned := cleanText(text)
	sentences := splitSentences(cleaned)

	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) == 1 {
		// A single sentence needs no embedding call.
		return []domain.Passage{{Text: sentences[0], Index: 0}}, nil
	}

	embeddings, err := c.encoder.Encode(sentences)
	if err != nil {
		return nil, fmt.Errorf("encode sentences: %w", err)
	}
	if err := validateShape(embeddings, len(sentences)); err != nil {
		return nil, err
	}

	for i := range embeddings {
		normalize(embeddings[i])
	}

	chunks := c.group(sentences, embeddings)
	chunks = c.mergeShort(chunks)

	passages := make([]domain.Passage, len(chunks))
	for i, text := range chunks {
		passages[i] = domain.Passage{Text: text, Index: i}
	}
	return passages, nil
}

// group starts a new chunk whenever a sentence drops below the similarity
// threshold against its immediate predecessor. The decision is strictly
// local; there is no running-centroid comparison.
func (c *SemanticChunker) group(sentences []string, embeddings [][]float32) []string {
	var chunks []string
	current := []string{sentences[0]}

	for i := 1; i < len(sentences); i++ {
		if cosine(embeddings[i-1], embeddings[i]) >= c.threshold {
			current = append(current, sentences[i])
		} else {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{sentences[i]}
		}
	}
	chunks = append(chunks, strings.Join(current, " "))

	return chunks
}

// mergeShort folds chunks under minChars into their predecessor to avoid
// singleton trailing fragments. The first chunk has no predecessor and is
// kept as-is.
func (c *SemanticChunker) mergeShort(chunks []string) []string {
	if len(chunks) == 0 {
		return chunks
	}

	merged := []string{chunks[0]}
	for _, chunk := range chunks[1:] {
		if len(chunk) < c.minChars {
			merged[len(merged)-1] = merged[len(merged)-1] + " " + chunk
		} else {
			merged = append(merged, chunk)
		}
	}
	return merged
}

// cleanText collapses all whitespace runs to single spaces and trims.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences ends a sentence at '.', '!' or '?' followed by
// whitespace. Empty fragments are dropped; a trailing fragment without
// terminal punctuation is kept.
func splitSentences(text string) []string {
	var sentences []string

	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[start : loc[0]+1])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

// validateShape checks for exactly one embedding row per sentence, all of
// the same non-zero width.
func validateShape(embeddings [][]float32, want int) error {
	if len(embeddings) != want {
		return fmt.Errorf("%w: %d rows for %d sentences", ErrEncoderShape, len(embeddings), want)
	}
	width := len(embeddings[0])
	if width == 0 {
		return fmt.Errorf("%w: zero-width rows", ErrEncoderShape)
	}
	for i, row := range embeddings {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d dims, expected %d", ErrEncoderShape, i, len(row), width)
		}
	}
	return nil
}

// normalize scales the vector to unit L2 norm in place. Zero-norm rows use
// a 1e-8 floor, yielding a degenerate all-near-zero vector instead of a
// division by zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1e-8
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// cosine is the dot product of two unit vectors.
func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
