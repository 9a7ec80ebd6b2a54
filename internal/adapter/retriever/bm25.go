package retriever

import (
	"math"
	"sort"

	"chefrag/internal/domain"
	"chefrag/internal/port"
)

// BM25Index ranks a fixed passage collection against free-text queries by
// lexical relevance. All state lives in memory and is rebuilt wholesale on
// every IndexPassages call; the new state replaces the old in a single
// assignment, so concurrent Retrieve calls always observe a consistent
// bundle. IndexPassages itself is not safe to call concurrently with other
// index operations and needs external write exclusion.
type BM25Index struct {
	tokenizer port.Tokenizer
	k1        float64
	b         float64
	state     *indexState
}

// indexState holds the derived tables for one indexed corpus. The parallel
// slices are always the same length.
type indexState struct {
	passages  []domain.Passage
	tokenized [][]string
	lengths   []int
	avgLength float64
	docFreqs  map[string]int
	idf       map[string]float64
}

// NewBM25Index creates an empty index. k1 controls term-frequency
// saturation, b controls length normalization; both are fixed for the
// index's lifetime.
func NewBM25Index(tokenizer port.Tokenizer, k1, b float64) *BM25Index {
	return &BM25Index{
		tokenizer: tokenizer,
		k1:        k1,
		b:         b,
		state:     emptyState(),
	}
}

func emptyState() *indexState {
	return &indexState{
		docFreqs: make(map[string]int),
		idf:      make(map[string]float64),
	}
}

// IndexPassages tokenizes every passage and rebuilds all derived tables,
// replacing any prior state. Indexing an empty collection succeeds and
// yields empty tables with an average length of 0.
func (x *BM25Index) IndexPassages(passages []domain.Passage) {
	st := emptyState()
	st.passages = passages
	st.tokenized = make([][]string, len(passages))
	st.lengths = make([]int, len(passages))

	totalLen := 0
	for i, p := range passages {
		tokens := x.tokenizer.Tokenize(p.Text)
		st.tokenized[i] = tokens
		st.lengths[i] = len(tokens)
		totalLen += len(tokens)
	}
	if len(passages) > 0 {
		st.avgLength = float64(totalLen) / float64(len(passages))
	}

	// Document frequency uses set semantics per passage.
	for _, tokens := range st.tokenized {
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			st.docFreqs[tok]++
		}
	}

	// The +1 inside the logarithm keeps idf positive even for terms
	// appearing in every passage.
	n := float64(len(passages))
	for tok, df := range st.docFreqs {
		st.idf[tok] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}

	x.state = st
}

// IndexTexts indexes raw passage strings, assigning sequential indices.
func (x *BM25Index) IndexTexts(texts []string) {
	passages := make([]domain.Passage, len(texts))
	for i, t := range texts {
		passages[i] = domain.Passage{Text: t, Index: i}
	}
	x.IndexPassages(passages)
}

// Score computes the BM25 score of the passage at idx for the given query
// tokens. Query tokens absent from the idf table contribute zero.
func (x *BM25Index) Score(queryTokens []string, idx int) float64 {
	return x.state.score(queryTokens, idx, x.k1, x.b)
}

func (st *indexState) score(queryTokens []string, idx int, k1, b float64) float64 {
	if st.avgLength == 0 {
		return 0
	}

	tf := make(map[string]int, len(st.tokenized[idx]))
	for _, tok := range st.tokenized[idx] {
		tf[tok]++
	}

	dl := float64(st.lengths[idx])
	score := 0.0
	for _, tok := range queryTokens {
		idf, ok := st.idf[tok]
		if !ok {
			continue
		}
		f := float64(tf[tok])
		score += idf * (f * (k1 + 1)) / (f + k1*(1-b+b*(dl/st.avgLength)))
	}

	return score
}

// Retrieve tokenizes the query, scores every indexed passage with a full
// linear scan, and returns the top-k by descending score. Ties keep the
// original passage order. An empty corpus yields an empty result; an
// empty-token query is valid and scores every passage 0.
func (x *BM25Index) Retrieve(query string, topK int) ([]domain.ScoredPassage, error) {
	st := x.state
	if len(st.passages) == 0 {
		return nil, nil
	}

	queryTokens := x.tokenizer.Tokenize(query)

	results := make([]domain.ScoredPassage, len(st.passages))
	for i, p := range st.passages {
		results[i] = domain.ScoredPassage{
			Passage: p,
			Score:   st.score(queryTokens, i, x.k1, x.b),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// Stats reports the current corpus statistics.
func (x *BM25Index) Stats() domain.Stats {
	st := x.state
	return domain.Stats{
		TotalPassages: len(st.passages),
		AvgPassageLen: st.avgLength,
		UniqueTerms:   len(st.idf),
	}
}
