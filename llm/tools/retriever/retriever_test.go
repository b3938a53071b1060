package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fixedEmbedder) Dimension() int { return len(f.vector) }

func newSeededStore(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()

	store := vectorstore.NewMemoryStore(3)
	require.NoError(t, store.Insert(context.Background(), []vectorstore.Document{
		{Text: "fractions represent parts of a whole", Embedding: []float32{1, 0, 0}, Source: "math.txt", Subject: "math", DifficultyLevel: 3},
		{Text: "photosynthesis converts light to energy", Embedding: []float32{0, 1, 0}, Source: "science.txt", Subject: "science", DifficultyLevel: 4},
	}))
	return store
}

func TestRetrieverExecute(t *testing.T) {
	store := newSeededStore(t)
	tool := NewRetriever(&fixedEmbedder{vector: []float32{1, 0, 0}}, store)

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "retriever",
		Data: map[string]interface{}{"query": "what are fractions", "limit": float64(1)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)

	results := result.Data["results"].([]map[string]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "fractions represent parts of a whole", results[0]["text"])
	assert.Equal(t, "math", results[0]["subject"])
}

func TestRetrieverSubjectFilter(t *testing.T) {
	store := newSeededStore(t)
	tool := NewRetriever(&fixedEmbedder{vector: []float32{1, 0, 0}}, store)

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "retriever",
		Data: map[string]interface{}{"query": "energy", "subject": "science"},
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)

	results := result.Data["results"].([]map[string]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "science", results[0]["subject"])
}

func TestRetrieverMissingQuery(t *testing.T) {
	tool := NewRetriever(&fixedEmbedder{vector: []float32{1, 0, 0}}, newSeededStore(t))

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "retriever",
		Data: map[string]interface{}{},
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "query")
}

func TestRetrieverSchema(t *testing.T) {
	tool := NewRetriever(&fixedEmbedder{vector: []float32{1, 0, 0}}, newSeededStore(t))

	assert.Equal(t, "retriever", tool.Name())
	assert.NotEmpty(t, tool.Description())

	schema := tool.Schema()
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["required"], "query")
}
