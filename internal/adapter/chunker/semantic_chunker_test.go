package chunker

import (
	"errors"
	"reflect"
	"testing"
)

// stubEncoder returns canned vectors and records how often it is called.
type stubEncoder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (e *stubEncoder) Encode(sentences []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(e.vectors))
	for i, v := range e.vectors {
		row := make([]float32, len(v))
		copy(row, v)
		out[i] = row
	}
	return out, nil
}

func (e *stubEncoder) Dimension() int    { return 2 }
func (e *stubEncoder) ModelName() string { return "stub" }

const (
	sentPasta = "The pasta is boiled in salted water until it is al dente."
	sentSauce = "The sauce is made with eggs and plenty of grated cheese."
	sentCar   = "Wash the car thoroughly before waxing the hood panels."
)

func TestSemanticSingleSentenceBypassesEncoder(t *testing.T) {
	enc := &stubEncoder{}
	c := NewSemanticChunker(enc, 0.65, 40)

	passages, err := c.Chunk("Boil the pasta in salted water.")
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Text != "Boil the pasta in salted water." {
		t.Errorf("sentence altered: %q", passages[0].Text)
	}
	if enc.calls != 0 {
		t.Errorf("encoder must not be invoked for a single sentence, got %d calls", enc.calls)
	}
}

func TestSemanticEmptyText(t *testing.T) {
	c := NewSemanticChunker(&stubEncoder{}, 0.65, 40)

	for _, input := range []string{"", "   \n\t  "} {
		passages, err := c.Chunk(input)
		if err != nil {
			t.Fatal(err)
		}
		if len(passages) != 0 {
			t.Errorf("expected no passages for %q, got %d", input, len(passages))
		}
	}
}

func TestSemanticGrouping(t *testing.T) {
	enc := &stubEncoder{vectors: [][]float32{{1, 0}, {1, 0}, {0, 1}}}
	c := NewSemanticChunker(enc, 0.65, 40)

	text := sentPasta + " " + sentSauce + " " + sentCar
	passages, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}

	if len(passages) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(passages), passages)
	}
	if passages[0].Text != sentPasta+" "+sentSauce {
		t.Errorf("similar sentences not grouped: %q", passages[0].Text)
	}
	if passages[1].Text != sentCar {
		t.Errorf("dissimilar sentence not split off: %q", passages[1].Text)
	}
	if enc.calls != 1 {
		t.Errorf("expected a single batch encode call, got %d", enc.calls)
	}
}

func TestSemanticMergeShortChunk(t *testing.T) {
	enc := &stubEncoder{vectors: [][]float32{{1, 0}, {0, 1}, {1, 0}}}
	c := NewSemanticChunker(enc, 0.65, 40)

	text := sentPasta + " " + sentCar + " Serve hot."
	passages, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}

	if len(passages) != 2 {
		t.Fatalf("expected short trailing chunk to merge, got %d chunks: %+v", len(passages), passages)
	}
	if passages[1].Text != sentCar+" Serve hot." {
		t.Errorf("trailing fragment not merged into predecessor: %q", passages[1].Text)
	}
}

func TestSemanticFirstChunkShortKept(t *testing.T) {
	enc := &stubEncoder{vectors: [][]float32{{1, 0}, {0, 1}}}
	c := NewSemanticChunker(enc, 0.65, 40)

	text := "Preheat the oven. " + sentPasta
	passages, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}

	if len(passages) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(passages), passages)
	}
	if passages[0].Text != "Preheat the oven." {
		t.Errorf("first chunk must be kept even when short: %q", passages[0].Text)
	}
}

func TestSemanticShapeMismatch(t *testing.T) {
	enc := &stubEncoder{vectors: [][]float32{{1, 0}}} // one row for two sentences
	c := NewSemanticChunker(enc, 0.65, 40)

	_, err := c.Chunk(sentPasta + " " + sentCar)
	if !errors.Is(err, ErrEncoderShape) {
		t.Fatalf("expected ErrEncoderShape, got %v", err)
	}

	enc = &stubEncoder{vectors: [][]float32{{1, 0}, {1}}} // ragged rows
	c = NewSemanticChunker(enc, 0.65, 40)
	_, err = c.Chunk(sentPasta + " " + sentCar)
	if !errors.Is(err, ErrEncoderShape) {
		t.Fatalf("expected ErrEncoderShape for ragged rows, got %v", err)
	}
}

func TestSemanticEncoderError(t *testing.T) {
	wantErr := errors.New("connection refused")
	c := NewSemanticChunker(&stubEncoder{err: wantErr}, 0.65, 40)

	_, err := c.Chunk(sentPasta + " " + sentCar)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped encoder error, got %v", err)
	}
}

func TestSemanticZeroNormVector(t *testing.T) {
	enc := &stubEncoder{vectors: [][]float32{{0, 0}, {1, 0}}}
	c := NewSemanticChunker(enc, 0.65, 40)

	passages, err := c.Chunk(sentPasta + " " + sentSauce)
	if err != nil {
		t.Fatalf("zero-norm embedding must not fail: %v", err)
	}
	if len(passages) != 2 {
		t.Errorf("zero-norm row should be dissimilar to everything, got %d chunks", len(passages))
	}
}

func TestSemanticWhitespaceCleaning(t *testing.T) {
	enc := &stubEncoder{vectors: [][]float32{{1, 0}, {1, 0}}}
	c := NewSemanticChunker(enc, 0.65, 40)

	text := "The  dough\n\nrests   overnight in the fridge.\tThen it\nis shaped into loaves and baked."
	passages, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(passages))
	}
	want := "The dough rests overnight in the fridge. Then it is shaped into loaves and baked."
	if passages[0].Text != want {
		t.Errorf("whitespace not collapsed:\n got %q\nwant %q", passages[0].Text, want)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{
			"First sentence. Second one! Third?",
			[]string{"First sentence.", "Second one!", "Third?"},
		},
		{
			"No terminal punctuation at all",
			[]string{"No terminal punctuation at all"},
		},
		{
			"Trailing period.",
			[]string{"Trailing period."},
		},
		{
			"Mix here. And a tail without punctuation",
			[]string{"Mix here.", "And a tail without punctuation"},
		},
	}

	for _, tt := range tests {
		got := splitSentences(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("splitSentences(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
