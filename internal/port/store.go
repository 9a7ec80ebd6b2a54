package port

import "chefrag/internal/domain"

// PassageStore persists chunked passages between ingestion and serving.
type PassageStore interface {
	// PutPassages appends passages in emission order.
	PutPassages(passages []domain.Passage) error

	// ListPassages returns all stored passages in emission order.
	ListPassages() ([]domain.Passage, error)

	// Clear removes all stored passages and stats.
	Clear() error

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Close() error
}
