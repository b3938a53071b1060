package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

var _ VectorStore = &MemoryStore{}

// MemoryStore is an in-process VectorStore for local development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      []Document
	dimension int
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{dimension: dimension}
}

func (m *MemoryStore) EnsureCollection(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range docs {
		if len(doc.Embedding) != m.dimension {
			return fmt.Errorf("document %d has embedding dimension %d, expected %d", i, len(doc.Embedding), m.dimension)
		}
	}
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *MemoryStore) Search(ctx context.Context, embedding []float32, limit int, subject string) ([]SearchResult, error) {
	if len(embedding) != m.dimension {
		return nil, fmt.Errorf("query embedding dimension %d, expected %d", len(embedding), m.dimension)
	}
	if limit <= 0 {
		limit = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []SearchResult
	for _, doc := range m.docs {
		if subject != "" && doc.Subject != subject {
			continue
		}
		results = append(results, SearchResult{
			Document: doc,
			Score:    cosineSimilarity(embedding, doc.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryStore) HasChunk(ctx context.Context, source string, chunkIndex int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.docs {
		if doc.Source == source && doc.ChunkIndex == chunkIndex {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
