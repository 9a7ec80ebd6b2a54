package retriever

import (
	"math"
	"strings"
	"testing"

	"chefrag/internal/adapter/analyzer"
)

var recipeCorpus = []string{
	"Pasta carbonara is made with eggs and cheese",
	"Biryani requires rice and aromatic spices",
	"Chocolate cake needs cocoa powder and sugar",
}

func newTestIndex() *BM25Index {
	return NewBM25Index(analyzer.NewTokenizer(), 1.5, 0.75)
}

func TestBM25Retrieve(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts(recipeCorpus)

	results, err := idx.Retrieve("pasta eggs", 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("expected exactly 2 results, got %d", len(results))
	}
	if !strings.Contains(results[0].Passage.Text, "carbonara") {
		t.Errorf("expected top result to contain 'carbonara', got %q", results[0].Passage.Text)
	}
	if results[0].Score <= 0 {
		t.Errorf("expected positive score for matching passage, got %f", results[0].Score)
	}
}

func TestBM25EmptyQuery(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts(recipeCorpus)

	results, err := idx.Retrieve("", 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != len(recipeCorpus) {
		t.Fatalf("expected %d results for empty query, got %d", len(recipeCorpus), len(results))
	}
	for i, r := range results {
		if r.Score != 0 {
			t.Errorf("expected score 0 for result %d, got %f", i, r.Score)
		}
		// Ties keep original passage order.
		if r.Passage.Index != i {
			t.Errorf("expected passage index %d at position %d, got %d", i, i, r.Passage.Index)
		}
	}
}

func TestBM25EmptyCorpus(t *testing.T) {
	idx := newTestIndex()

	results, err := idx.Retrieve("pasta", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from unpopulated index, got %d", len(results))
	}

	idx.IndexTexts(nil)
	results, err = idx.Retrieve("pasta", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty corpus, got %d", len(results))
	}
}

func TestBM25UnknownTokensSkipped(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts(recipeCorpus)

	results, err := idx.Retrieve("zzzznonexistent qqqq", 3)
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("unknown query tokens must contribute zero, got score %f", r.Score)
		}
	}
}

func TestBM25TopKLargerThanCorpus(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts(recipeCorpus)

	results, err := idx.Retrieve("rice", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(recipeCorpus) {
		t.Errorf("expected all %d passages, got %d", len(recipeCorpus), len(results))
	}
}

func TestBM25IndexingIdempotent(t *testing.T) {
	a := newTestIndex()
	b := newTestIndex()
	a.IndexTexts(recipeCorpus)
	b.IndexTexts(recipeCorpus)
	b.IndexTexts(recipeCorpus)

	tok := analyzer.NewTokenizer()
	queryTokens := tok.Tokenize("chocolate cake sugar")

	for i := range recipeCorpus {
		sa := a.Score(queryTokens, i)
		sb := b.Score(queryTokens, i)
		if sa != sb {
			t.Errorf("passage %d: re-indexing changed score from %f to %f", i, sa, sb)
		}
	}

	statsA := a.Stats()
	statsB := b.Stats()
	if statsA != statsB {
		t.Errorf("re-indexing changed stats: %+v vs %+v", statsA, statsB)
	}
}

func TestBM25ReindexReplacesState(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts(recipeCorpus)
	idx.IndexTexts([]string{"Miso soup with tofu and seaweed"})

	results, err := idx.Retrieve("pasta carbonara", 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if strings.Contains(r.Passage.Text, "carbonara") {
			t.Errorf("old corpus leaked into re-indexed state: %q", r.Passage.Text)
		}
		if r.Score != 0 {
			t.Errorf("expected zero score against replaced corpus, got %f", r.Score)
		}
	}

	if stats := idx.Stats(); stats.TotalPassages != 1 {
		t.Errorf("expected 1 passage after re-index, got %d", stats.TotalPassages)
	}
}

func TestBM25IDFFormula(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts([]string{
		"salt pepper",
		"salt sugar",
		"salt flour",
	})

	// "salt" appears in every passage; the +1 variant keeps its idf positive.
	st := idx.state
	want := math.Log((3.0-3.0+0.5)/(3.0+0.5) + 1)
	if got := st.idf["salt"]; math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(salt) = %f, want %f", got, want)
	}
	if st.idf["salt"] <= 0 {
		t.Errorf("idf for a term in every passage must stay positive, got %f", st.idf["salt"])
	}

	want = math.Log((3.0-1.0+0.5)/(1.0+0.5) + 1)
	if got := st.idf["sugar"]; math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(sugar) = %f, want %f", got, want)
	}
}

func TestBM25RelevanceMonotonicity(t *testing.T) {
	base := []string{
		"tomato soup with basil",
		"green salad with olives",
		"bread with butter",
	}
	boosted := []string{
		"tomato soup with basil tomato tomato",
		"green salad with olives",
		"bread with butter",
	}

	a := newTestIndex()
	a.IndexTexts(base)
	b := newTestIndex()
	b.IndexTexts(boosted)

	ra, err := a.Retrieve("tomato", 3)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := b.Retrieve("tomato", 3)
	if err != nil {
		t.Fatal(err)
	}

	if ra[0].Passage.Index != 0 || rb[0].Passage.Index != 0 {
		t.Fatalf("expected tomato passage ranked first in both corpora")
	}
	if rb[0].Score < ra[0].Score {
		t.Errorf("adding query-term occurrences decreased the score: %f -> %f", ra[0].Score, rb[0].Score)
	}
}

func TestBM25StableTieOrder(t *testing.T) {
	idx := newTestIndex()
	idx.IndexTexts([]string{
		"lemon tart",
		"lemon pie",
		"lemon cake",
	})

	results, err := idx.Retrieve("lemon", 3)
	if err != nil {
		t.Fatal(err)
	}

	// Equal-length passages with one occurrence each score identically;
	// the stable sort must preserve corpus order.
	for i, r := range results {
		if r.Passage.Index != i {
			t.Errorf("tie broken out of order: position %d holds passage %d", i, r.Passage.Index)
		}
	}
}
