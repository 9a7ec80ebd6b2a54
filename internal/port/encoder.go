package port

// Encoder turns sentences into embedding vectors, one vector per input.
// Implementations are external collaborators (HTTP APIs, local models) and
// are treated as blocking synchronous calls; callers needing cancellation
// must wrap the call themselves.
type Encoder interface {
	// Encode embeds the given sentences in one batch.
	Encode(sentences []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
