package history

import (
	"context"
	"fmt"

	"github.com/VarunStarz/sahayak-edu-local/internal/embeddings"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a past
// interaction to count as answering the current query.
const DefaultSimilarityThreshold = 0.9

// History answers repeated questions from past interactions instead of
// running the full response pipeline again.
type History struct {
	embedder  embeddings.Embedder
	store     vectorstore.VectorStore
	threshold float32
}

// NewHistory creates the history agent with its own interaction index.
func NewHistory(embedder embeddings.Embedder, store vectorstore.VectorStore, threshold float32) *History {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &History{
		embedder:  embedder,
		store:     store,
		threshold: threshold,
	}
}

// Name returns the agent name
func (h *History) Name() string { return "history" }

// Description returns the agent description
func (h *History) Description() string {
	return "Answers queries that closely match a previously answered question, delegating new questions to the router."
}

// Capabilities lists what the agent can do
func (h *History) Capabilities() []string {
	return []string{"interaction recall", "similarity matching"}
}

// Record indexes an answered interaction so similar future queries can be
// served from history.
func (h *History) Record(ctx context.Context, query, response string) error {
	embedding, err := h.embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed interaction: %w", err)
	}

	return h.store.Insert(ctx, []vectorstore.Document{
		{
			Text:      response,
			Embedding: embedding,
			Source:    query,
		},
	})
}

// Execute looks for a sufficiently similar past query. On a miss the result
// carries delegate metadata so the caller can route to a live agent.
func (h *History) Execute(ctx context.Context, input *agents.AgentInput, llm shared.LLMProvider) (*agents.AgentResult, error) {
	embedding, err := h.embedder.Embed(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := h.store.Search(ctx, embedding, 1, "")
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}

	if len(hits) > 0 && hits[0].Score >= h.threshold {
		return &agents.AgentResult{
			Content: hits[0].Document.Text,
			Success: true,
			Metadata: map[string]any{
				"source":        "history",
				"matched_query": hits[0].Document.Source,
				"similarity":    hits[0].Score,
			},
		}, nil
	}

	return &agents.AgentResult{
		Success: true,
		Metadata: map[string]any{
			"source":   "none",
			"delegate": "router",
		},
	}, nil
}
