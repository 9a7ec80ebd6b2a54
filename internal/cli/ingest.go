package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"chefrag/config"
	"chefrag/internal/adapter/analyzer"
	"chefrag/internal/adapter/chunker"
	"chefrag/internal/adapter/embedding"
	"chefrag/internal/adapter/fs"
	"chefrag/internal/adapter/store"
	"chefrag/internal/port"
	"chefrag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk corpus files into retrievable passages",
	Long: `Chunk the text files in the given directory into passages and store
them in .chefrag/passages.db for retrieval. Re-ingesting replaces the
stored corpus.

Examples:
  chefrag ingest .                # Ingest current directory
  chefrag ingest ./data/recipes   # Ingest a specific corpus directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .chefrag directory: %w", err)
	}

	st, err := store.NewBoltStore(config.DBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open passage store: %w", err)
	}
	defer st.Close()

	tokenizer := analyzer.NewTokenizer()
	walker := fs.NewWalker(cfg.Corpus.Includes, cfg.Corpus.Excludes)

	primary, fallback, err := buildChunkers(cfg)
	if err != nil {
		return err
	}

	ingestUC := usecase.NewIngestUseCase(st, walker, primary, fallback, tokenizer, slog.Default())

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	progress := func(processed, total int, currentFile string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionThrottle(100*time.Millisecond),
			)
		}
		bar.Set(processed)
	}

	start := time.Now()
	result, err := ingestUC.Ingest(path, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	fmt.Printf("Ingested %d files into %d passages in %s\n",
		result.FilesIngested, result.PassagesCreated, time.Since(start).Round(time.Millisecond))
	if result.Fallbacks > 0 {
		fmt.Printf("Window fallback used for %d file(s)\n", result.Fallbacks)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e)
	}

	return nil
}

// buildChunkers resolves the configured chunking strategy. Semantic
// chunking always carries a window fallback so embedding failures cannot
// stall ingestion.
func buildChunkers(cfg *config.Config) (primary, fallback port.Chunker, err error) {
	window := chunker.NewWindowChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)

	switch cfg.Chunking.Strategy {
	case "", "window":
		return window, nil, nil
	case "semantic":
		encoder, err := newEncoder(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create encoder: %w", err)
		}
		semantic := chunker.NewSemanticChunker(encoder, cfg.Chunking.SimilarityThreshold, cfg.Chunking.MinChunkChars)
		return semantic, window, nil
	default:
		return nil, nil, fmt.Errorf("unknown chunking strategy: %s", cfg.Chunking.Strategy)
	}
}

func newEncoder(cfg *config.Config) (port.Encoder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMockEncoder(cfg.Embedding.Dimension), nil
	case "openai":
		return embedding.NewHTTPEncoder(embedding.Options{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			Model:     cfg.Embedding.Model,
			BatchSize: cfg.Embedding.BatchSize,
		})
	case "ollama":
		baseURL := cfg.Embedding.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		return embedding.NewHTTPEncoder(embedding.Options{
			BaseURL:   baseURL,
			Model:     cfg.Embedding.Model,
			BatchSize: cfg.Embedding.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
