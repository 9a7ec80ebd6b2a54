package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chefrag/config"
	"chefrag/internal/adapter/analyzer"
	"chefrag/internal/adapter/retriever"
	"chefrag/internal/adapter/store"
	"chefrag/internal/usecase"
)

var pipelineQueries = []string{
	"How to make pasta?",
	"What are the ingredients for biryani?",
	"Give me a chocolate cake recipe",
	"How to make stir fry vegetables?",
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run canned smoke queries against the ingested corpus",
	Long: `Run a fixed set of recipe queries against the ingested corpus and
print retrieval scores. Useful as an end-to-end smoke check after
ingestion.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
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
	stats := idx.Stats()

	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("CHEFRAG PIPELINE SMOKE TEST")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Passages: %d | Avg length: %.1f tokens | Unique terms: %d\n\n",
		stats.TotalPassages, stats.AvgPassageLen, stats.UniqueTerms)

	retrieveUC := usecase.NewRetrieveUseCase(idx, cfg.Retrieval.MinScore)

	for _, query := range pipelineQueries {
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("Q: %s\n", query)

		results, err := retrieveUC.Retrieve(query, cfg.Retrieval.TopK)
		if err != nil {
			return fmt.Errorf("retrieval failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No relevant passages found.")
			continue
		}

		for i, r := range results {
			preview := r.Passage.Text
			if len(preview) > 120 {
				preview = preview[:120] + "..."
			}
			fmt.Printf("  %d. [%.2f] %s\n", i+1, r.Score, preview)
		}
	}

	fmt.Println(strings.Repeat("=", 70))
	return nil
}
