package retriever

import (
	"context"
	"fmt"

	"github.com/VarunStarz/sahayak-edu-local/internal/embeddings"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

const defaultLimit = 5

// Retriever searches indexed curriculum content by semantic similarity.
type Retriever struct {
	embedder embeddings.Embedder
	store    vectorstore.VectorStore
}

// NewRetriever creates a retriever backed by the given embedder and store.
func NewRetriever(embedder embeddings.Embedder, store vectorstore.VectorStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
	}
}

// Name returns the tool name
func (r *Retriever) Name() string {
	return "retriever"
}

// Description returns the tool description
func (r *Retriever) Description() string {
	return "Searches indexed curriculum content for passages relevant to a query. Returns the most similar content chunks with their sources, subjects, and similarity scores."
}

// Schema returns the JSON schema for input validation
func (r *Retriever) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query to find relevant curriculum content",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results to return (default 5)",
			},
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "Optional subject to restrict the search to",
			},
		},
		"required": []string{"query"},
	}
}

// Execute runs the similarity search
func (r *Retriever) Execute(ctx context.Context, input *toolshared.ToolInput, llmProvider providershared.LLMProvider) (*toolshared.ToolResult, error) {
	query, ok := input.Data["query"].(string)
	if !ok || query == "" {
		return &toolshared.ToolResult{
			Success: false,
			Error:   "query field is required and must be a non-empty string",
		}, nil
	}

	limit := defaultLimit
	if v, ok := input.Data["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	subject, _ := input.Data["subject"].(string)

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, embedding, limit, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		results = append(results, map[string]interface{}{
			"text":             hit.Document.Text,
			"source":           hit.Document.Source,
			"subject":          hit.Document.Subject,
			"difficulty_level": hit.Document.DifficultyLevel,
			"score":            hit.Score,
		})
	}

	return &toolshared.ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"query":   query,
			"results": results,
			"count":   len(results),
		},
	}, nil
}
