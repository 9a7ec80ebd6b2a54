package port

import "chefrag/internal/domain"

// Retriever defines the interface for ranked retrieval over an indexed corpus.
type Retriever interface {
	// Retrieve returns the top-k passages ranked by relevance to the query.
	// An empty corpus yields an empty result, never an error.
	Retrieve(query string, topK int) ([]domain.ScoredPassage, error)
}
