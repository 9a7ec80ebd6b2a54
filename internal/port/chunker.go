package port

import "chefrag/internal/domain"

type Chunker interface {
	Chunk(text string) ([]domain.Passage, error)
}
