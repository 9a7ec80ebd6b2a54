package embedding

// MockEncoder produces deterministic embeddings from character codes.
// Useful for tests and offline runs where no embedding service exists.
type MockEncoder struct {
	dimension int
}

func NewMockEncoder(dimension int) *MockEncoder {
	return &MockEncoder{dimension: dimension}
}

func (e *MockEncoder) Encode(sentences []string) ([][]float32, error) {
	vectors := make([][]float32, len(sentences))
	for i, s := range sentences {
		vectors[i] = make([]float32, e.dimension)
		for j, r := range s {
			if j >= e.dimension {
				break
			}
			vectors[i][j] = float32(r) / 1000.0
		}
	}
	return vectors, nil
}

func (e *MockEncoder) Dimension() int {
	return e.dimension
}

func (e *MockEncoder) ModelName() string {
	return "mock"
}
