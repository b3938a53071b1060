package response

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunStarz/sahayak-edu-local/internal/flow"
	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/test"
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

func fastRetry() flow.RetryPolicy {
	return flow.RetryPolicy{MaxRetries: 1, RetryDelay: 0, BackoffFactor: 1}
}

func seededStore(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()

	store := vectorstore.NewMemoryStore(3)
	require.NoError(t, store.Insert(context.Background(), []vectorstore.Document{
		{Text: "Photosynthesis converts light into chemical energy.", Embedding: []float32{1, 0, 0}, Source: "science/plants.txt", Subject: "science"},
		{Text: "Fractions represent parts of a whole.", Embedding: []float32{0, 1, 0}, Source: "math/fractions.txt", Subject: "math"},
	}))
	return store
}

func TestResponderExecute(t *testing.T) {
	fake := test.NewFakeProvider()
	fake.AddResponse("how do plants make food", &shared.CompletionResponse{
		Content: `{"query": "photosynthesis energy conversion"}`,
	})

	responder := NewResponder(&fixedEmbedder{vector: []float32{1, 0, 0}}, seededStore(t), "gemma3n", fastRetry())

	result, err := responder.Execute(context.Background(), &agents.AgentInput{
		Query:     "how do plants make food",
		InputType: models.InputTypeText,
	}, fake)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Content)
	assert.Equal(t, "photosynthesis energy conversion", result.Metadata["refined_query"])

	sources := result.Metadata["sources"].([]string)
	assert.Contains(t, sources, "science/plants.txt")

	// The compose prompt carries the retrieved context.
	lastReq := fake.GetLastRequest()
	require.Len(t, lastReq.Messages, 1)
	assert.Contains(t, lastReq.Messages[0].Content, "Photosynthesis converts light")
}

func TestResponderRefineFallsBackToRawQuery(t *testing.T) {
	fake := test.NewFakeProvider()
	fake.AddResponse("what are fractions", &shared.CompletionResponse{
		Content: "not json at all",
	})

	responder := NewResponder(&fixedEmbedder{vector: []float32{0, 1, 0}}, seededStore(t), "gemma3n", fastRetry())

	result, err := responder.Execute(context.Background(), &agents.AgentInput{
		Query:     "what are fractions",
		InputType: models.InputTypeText,
	}, fake)
	require.NoError(t, err)
	assert.Equal(t, "what are fractions", result.Metadata["refined_query"])
}

func TestResponderAnnotatesVoiceAndImage(t *testing.T) {
	store := seededStore(t)
	embedder := &fixedEmbedder{vector: []float32{1, 0, 0}}

	for inputType, prefix := range map[models.InputType]string{
		models.InputTypeVoice: "[spoken response]",
		models.InputTypeImage: "[image explanation]",
	} {
		responder := NewResponder(embedder, store, "gemma3n", fastRetry())
		result, err := responder.Execute(context.Background(), &agents.AgentInput{
			Query:     "how do plants make food",
			InputType: inputType,
		}, test.NewFakeProvider())
		require.NoError(t, err)
		assert.Contains(t, result.Content, prefix)
	}
}

func TestAnnotateForInputType(t *testing.T) {
	assert.Equal(t, "hi", annotateForInputType("hi", models.InputTypeText))
	assert.Equal(t, "[spoken response] hi", annotateForInputType("hi", models.InputTypeVoice))
	assert.Equal(t, "[image explanation] hi", annotateForInputType("hi", models.InputTypeImage))
}
