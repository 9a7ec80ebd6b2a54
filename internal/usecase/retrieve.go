package usecase

import (
	"chefrag/internal/domain"
	"chefrag/internal/port"
)

// RetrieveUseCase handles ranked retrieval over an indexed corpus.
type RetrieveUseCase struct {
	retriever port.Retriever
	minScore  float64 // Filter results below this score (0 = disabled)
}

// NewRetrieveUseCase creates a retrieve use case.
func NewRetrieveUseCase(retriever port.Retriever, minScore float64) *RetrieveUseCase {
	return &RetrieveUseCase{
		retriever: retriever,
		minScore:  minScore,
	}
}

// Retrieve returns the top-k passages for the query. A corpus with no
// matching passages yields an empty result, which callers surface as "no
// relevant passages found" rather than an error.
func (u *RetrieveUseCase) Retrieve(query string, topK int) ([]domain.ScoredPassage, error) {
	results, err := u.retriever.Retrieve(query, topK)
	if err != nil {
		return nil, err
	}

	if u.minScore > 0 {
		results = u.filterByScore(results)
	}

	return results, nil
}

func (u *RetrieveUseCase) filterByScore(results []domain.ScoredPassage) []domain.ScoredPassage {
	filtered := make([]domain.ScoredPassage, 0, len(results))
	for _, r := range results {
		if r.Score >= u.minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ScoredPassageResult is a simplified result for CLI output.
type ScoredPassageResult struct {
	Source string  `json:"source,omitempty"`
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}
