package domain

// Document is a raw input text plus optional caller-owned metadata.
// Immutable once produced.
type Document struct {
	Text     string
	Metadata map[string]string
}

// Passage is a contiguous piece of text derived from a Document.
// Index gives its position in emission order. Passages are value objects;
// they carry no back-reference to the source Document.
type Passage struct {
	Text     string
	Index    int
	Metadata map[string]string
}

// ScoredPassage pairs a passage with its relevance score.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// Stats describes an indexed corpus.
type Stats struct {
	TotalPassages int
	AvgPassageLen float64
	UniqueTerms   int
}
