package usecase

import (
	"fmt"
	"log/slog"
	"strconv"

	"chefrag/internal/adapter/fs"
	"chefrag/internal/domain"
	"chefrag/internal/port"
)

// IngestUseCase turns corpus files into stored passages: walk, read,
// chunk, tag metadata, persist. When the primary chunker fails (semantic
// chunking with a broken encoder), the fallback chunker produces passages
// from the same text so ingestion never stops on embedding trouble. The
// fallback is taken here, visibly, rather than swallowed inside the
// chunker.
type IngestUseCase struct {
	store     port.PassageStore
	walker    port.FileWalker
	chunker   port.Chunker
	fallback  port.Chunker
	tokenizer port.Tokenizer
	logger    *slog.Logger
}

// NewIngestUseCase creates an ingest use case. fallback may be nil when
// the primary chunker cannot fail (window chunking).
func NewIngestUseCase(
	store port.PassageStore,
	walker port.FileWalker,
	chunker port.Chunker,
	fallback port.Chunker,
	tokenizer port.Tokenizer,
	logger *slog.Logger,
) *IngestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		store:     store,
		walker:    walker,
		chunker:   chunker,
		fallback:  fallback,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	FilesIngested   int
	PassagesCreated int
	Fallbacks       int
	Errors          []string
}

// ProgressFunc reports ingestion progress to the caller.
type ProgressFunc func(processed, total int, currentFile string)

// Ingest replaces the stored corpus with passages chunked from the files
// under root. progress may be nil.
func (u *IngestUseCase) Ingest(root string, progress ProgressFunc) (*IngestResult, error) {
	result := &IngestResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus directory: %w", err)
	}

	// Re-ingestion replaces, never merges.
	if err := u.store.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear passage store: %w", err)
	}

	nextIndex := 0
	totalTokens := 0
	uniqueTerms := make(map[string]struct{})

	for i, file := range files {
		content, err := fs.ReadFile(file.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to read %s: %v", file.Path, err))
			continue
		}

		passages, fellBack, err := u.chunk(content)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to chunk %s: %v", file.Path, err))
			continue
		}
		if fellBack {
			result.Fallbacks++
		}

		for j := range passages {
			passages[j].Metadata = map[string]string{
				"source":  file.Path,
				"passage": strconv.Itoa(passages[j].Index),
			}
			passages[j].Index = nextIndex
			nextIndex++

			tokens := u.tokenizer.Tokenize(passages[j].Text)
			totalTokens += len(tokens)
			for _, tok := range tokens {
				uniqueTerms[tok] = struct{}{}
			}
		}

		if err := u.store.PutPassages(passages); err != nil {
			return nil, fmt.Errorf("failed to store passages for %s: %w", file.Path, err)
		}

		result.FilesIngested++
		result.PassagesCreated += len(passages)

		if progress != nil {
			progress(i+1, len(files), file.Path)
		}
	}

	avgLen := 0.0
	if result.PassagesCreated > 0 {
		avgLen = float64(totalTokens) / float64(result.PassagesCreated)
	}
	stats := domain.Stats{
		TotalPassages: result.PassagesCreated,
		AvgPassageLen: avgLen,
		UniqueTerms:   len(uniqueTerms),
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	return result, nil
}

// chunk runs the primary chunker and falls back to the secondary on
// failure, logging the degradation.
func (u *IngestUseCase) chunk(text string) ([]domain.Passage, bool, error) {
	passages, err := u.chunker.Chunk(text)
	if err == nil {
		return passages, false, nil
	}
	if u.fallback == nil {
		return nil, false, err
	}

	u.logger.Warn("semantic chunking failed, using window fallback", "error", err)

	passages, fbErr := u.fallback.Chunk(text)
	if fbErr != nil {
		return nil, false, fmt.Errorf("fallback chunking failed: %w", fbErr)
	}
	return passages, true, nil
}
