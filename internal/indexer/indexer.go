package indexer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/internal/embeddings"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
)

// Indexer loads curriculum files, chunks them, embeds the chunks, and
// inserts them into the vector store.
type Indexer struct {
	chunker   *Chunker
	embedder  embeddings.Embedder
	store     vectorstore.VectorStore
	batchSize int
	logger    zerolog.Logger
}

// Stats summarizes one indexing run.
type Stats struct {
	FilesProcessed int `json:"files_processed"`
	FilesFailed    int `json:"files_failed"`
	ChunksIndexed  int `json:"chunks_indexed"`
	ChunksSkipped  int `json:"chunks_skipped"`
}

// New creates an indexer wired to the given embedder and vector store.
func New(cfg *config.PlatformConfig, embedder embeddings.Embedder, store vectorstore.VectorStore, logger zerolog.Logger) (*Indexer, error) {
	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Indexer{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// IndexPath indexes a file or directory of curriculum material. Already
// indexed chunks are skipped so re-running over the same material is safe.
func (ix *Indexer) IndexPath(ctx context.Context, path, subject string, difficulty int) (*Stats, error) {
	files, err := CollectFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported files found under %s", path)
	}

	if err := ix.store.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare collection: %w", err)
	}

	stats := &Stats{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := ix.indexFile(ctx, file, subject, difficulty, stats); err != nil {
			ix.logger.Error().Err(err).Str("file", file).Msg("failed to index file")
			stats.FilesFailed++
			continue
		}
		stats.FilesProcessed++
	}

	ix.logger.Info().
		Int("files_processed", stats.FilesProcessed).
		Int("files_failed", stats.FilesFailed).
		Int("chunks_indexed", stats.ChunksIndexed).
		Int("chunks_skipped", stats.ChunksSkipped).
		Msg("indexing complete")

	return stats, nil
}

func (ix *Indexer) indexFile(ctx context.Context, path, subject string, difficulty int, stats *Stats) error {
	source, err := LoadFile(path, subject)
	if err != nil {
		return err
	}

	chunks := ix.chunker.Split(source.Text)
	if len(chunks) == 0 {
		return nil
	}

	var pending []vectorstore.Document
	var pendingTexts []string

	for i, chunk := range chunks {
		exists, err := ix.store.HasChunk(ctx, source.Path, i)
		if err != nil {
			return fmt.Errorf("failed to check for duplicate chunk: %w", err)
		}
		if exists {
			stats.ChunksSkipped++
			continue
		}

		pending = append(pending, vectorstore.Document{
			Text:            chunk,
			ChunkIndex:      i,
			Source:          source.Path,
			Subject:         source.Subject,
			DifficultyLevel: difficulty,
		})
		pendingTexts = append(pendingTexts, chunk)

		if len(pending) >= ix.batchSize {
			if err := ix.flush(ctx, pending, pendingTexts, stats); err != nil {
				return err
			}
			pending = pending[:0]
			pendingTexts = pendingTexts[:0]
		}
	}

	return ix.flush(ctx, pending, pendingTexts, stats)
}

func (ix *Indexer) flush(ctx context.Context, docs []vectorstore.Document, texts []string, stats *Stats) error {
	if len(docs) == 0 {
		return nil
	}

	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	for i := range docs {
		docs[i].Embedding = embeddings[i]
	}

	if err := ix.store.Insert(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	stats.ChunksIndexed += len(docs)
	return nil
}
