package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"chefrag/config"
	"chefrag/internal/adapter/analyzer"
	"chefrag/internal/adapter/retriever"
	"chefrag/internal/adapter/store"
)

func main() {
	corpusDir := flag.String("dir", ".", "Path to an ingested corpus directory")
	query := flag.String("q", "", "Query to benchmark")
	topK := flag.Int("k", 10, "Number of results")
	rounds := flag.Int("rounds", 100, "Retrieval rounds to time")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./data -q \"query\"")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. Index build time over the stored passages")
		fmt.Println("  2. Retrieval latency (full linear scan per round)")
		fmt.Println("  3. Top result quality for the given query")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewBoltStore(config.DBPath(*corpusDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening passage store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	passages, err := st.ListPassages()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading passages: %v\n", err)
		os.Exit(1)
	}
	if len(passages) == 0 {
		fmt.Fprintln(os.Stderr, "No passages found - run 'chefrag ingest' first")
		os.Exit(1)
	}

	fmt.Println("BM25 RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	idx := retriever.NewBM25Index(analyzer.NewTokenizer(), cfg.Retrieval.K1, cfg.Retrieval.B)

	start := time.Now()
	idx.IndexPassages(passages)
	buildTime := time.Since(start)

	stats := idx.Stats()
	fmt.Printf("Passages indexed: %d\n", stats.TotalPassages)
	fmt.Printf("Unique terms:     %d\n", stats.UniqueTerms)
	fmt.Printf("Avg length:       %.1f tokens\n", stats.AvgPassageLen)
	fmt.Printf("Index build:      %s\n\n", buildTime)

	fmt.Printf("Query: %q\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	start = time.Now()
	scored, _ := idx.Retrieve(*query, *topK)
	for i := 1; i < *rounds; i++ {
		scored, _ = idx.Retrieve(*query, *topK)
	}
	perRound := time.Since(start) / time.Duration(*rounds)

	fmt.Printf("Retrieval latency: %s per query (%d rounds)\n\n", perRound, *rounds)

	fmt.Printf("Top %d matches:\n\n", len(scored))
	for i, r := range scored {
		preview := r.Passage.Text
		if len(preview) > 150 {
			preview = preview[:150] + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", " ")
		fmt.Printf("%d. [%.3f] passage %d\n   %s\n\n", i+1, r.Score, r.Passage.Index, preview)
	}
}
