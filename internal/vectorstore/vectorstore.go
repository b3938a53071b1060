package vectorstore

import (
	"context"
	"fmt"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
)

// Document is a chunk of curriculum material with its embedding.
type Document struct {
	Text            string
	Embedding       []float32
	ChunkIndex      int
	Source          string
	Subject         string
	DifficultyLevel int
}

// SearchResult is one hit from a similarity search.
type SearchResult struct {
	Document Document
	Score    float32
}

// VectorStore is the interface for similarity search over curriculum chunks.
type VectorStore interface {
	// EnsureCollection creates the backing collection if it does not exist.
	EnsureCollection(ctx context.Context) error

	// Insert adds documents to the collection.
	Insert(ctx context.Context, docs []Document) error

	// Search returns the closest documents to the query embedding.
	// An empty filter searches the whole collection; otherwise the filter
	// restricts by subject.
	Search(ctx context.Context, embedding []float32, limit int, subject string) ([]SearchResult, error)

	// HasChunk reports whether a chunk from the given source is already stored.
	HasChunk(ctx context.Context, source string, chunkIndex int) (bool, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int64, error)

	Close() error
}

// New creates a vector store for the configured provider.
func New(cfg *config.VectorStoreConfig) (VectorStore, error) {
	switch cfg.Provider {
	case "milvus":
		return NewMilvusStore(cfg)
	case "memory":
		return NewMemoryStore(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", cfg.Provider)
	}
}
