package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer lowercases text and extracts maximal runs of word characters
// (letters, digits, underscore). No stemming, no stopword removal:
// indexing and querying must see identical token streams, so the same
// Tokenizer instance serves both paths.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text into lowercase tokens, preserving occurrence order
// and duplicates. Punctuation and whitespace are discarded. Empty or
// punctuation-only input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, strings.ToLower(word))
	}
	return tokens
}

// splitWords splits text into maximal word-character runs.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
