package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chefrag/config"
	"chefrag/internal/adapter/analyzer"
	"chefrag/internal/adapter/retriever"
	"chefrag/internal/adapter/store"
	"chefrag/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve passages matching a query",
	Long: `Rank the ingested passages against a free-text query using BM25 and
print the top results.

Examples:
  chefrag query -q "how to make pasta"
  chefrag query -q "biryani ingredients" --top-k 5 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()

	dbPath := config.DBPath(rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no ingested corpus found. Run 'chefrag ingest' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open passage store: %w", err)
	}
	defer st.Close()

	passages, err := st.ListPassages()
	if err != nil {
		return fmt.Errorf("failed to load passages: %w", err)
	}

	idx := retriever.NewBM25Index(analyzer.NewTokenizer(), cfg.Retrieval.K1, cfg.Retrieval.B)
	idx.IndexPassages(passages)

	retrieveUC := usecase.NewRetrieveUseCase(idx, cfg.Retrieval.MinScore)

	topK := cfg.Retrieval.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	scored, err := retrieveUC.Retrieve(queryText, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	results := make([]usecase.ScoredPassageResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, usecase.ScoredPassageResult{
			Source: s.Passage.Metadata["source"],
			Index:  s.Passage.Index,
			Score:  s.Score,
			Text:   s.Passage.Text,
		})
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No relevant passages found.")
		return nil
	}

	fmt.Printf("Found %d passages for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] passage %d (score: %.2f) ---\n", i+1, r.Index, r.Score)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
