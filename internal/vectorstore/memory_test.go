package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsertAndSearch(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	require.NoError(t, store.EnsureCollection(ctx))
	require.NoError(t, store.Insert(ctx, []Document{
		{Text: "fractions lesson", Embedding: []float32{1, 0, 0}, Source: "math.txt", ChunkIndex: 0, Subject: "math", DifficultyLevel: 3},
		{Text: "algebra lesson", Embedding: []float32{0.9, 0.1, 0}, Source: "math.txt", ChunkIndex: 1, Subject: "math", DifficultyLevel: 5},
		{Text: "plants lesson", Embedding: []float32{0, 1, 0}, Source: "science.txt", ChunkIndex: 0, Subject: "science", DifficultyLevel: 2},
	}))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "fractions lesson", results[0].Document.Text)
	assert.InDelta(t, 1.0, float64(results[0].Score), 0.001)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStoreSearchSubjectFilter(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []Document{
		{Text: "math chunk", Embedding: []float32{1, 0, 0}, Subject: "math"},
		{Text: "science chunk", Embedding: []float32{1, 0, 0}, Subject: "science"},
	}))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 5, "science")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "science chunk", results[0].Document.Text)
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	err := store.Insert(ctx, []Document{{Text: "bad", Embedding: []float32{1, 0}}})
	assert.Error(t, err)

	_, err = store.Search(ctx, []float32{1, 0}, 5, "")
	assert.Error(t, err)
}

func TestMemoryStoreHasChunkAndCount(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []Document{
		{Text: "a", Embedding: []float32{1, 0}, Source: "doc.txt", ChunkIndex: 0},
		{Text: "b", Embedding: []float32{0, 1}, Source: "doc.txt", ChunkIndex: 1},
	}))

	found, err := store.HasChunk(ctx, "doc.txt", 1)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.HasChunk(ctx, "doc.txt", 2)
	require.NoError(t, err)
	assert.False(t, found)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(cosineSimilarity([]float32{1, 1}, []float32{2, 2})), 0.001)
	assert.InDelta(t, 0.0, float64(cosineSimilarity([]float32{1, 0}, []float32{0, 1})), 0.001)
	assert.InDelta(t, -1.0, float64(cosineSimilarity([]float32{1, 0}, []float32{-1, 0})), 0.001)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
}
