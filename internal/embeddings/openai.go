package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
)

var _ Embedder = &OpenAIEmbedder{}

// OpenAIEmbedder generates embeddings via the OpenAI API.
type OpenAIEmbedder struct {
	config    *config.EmbedderConfig
	client    *openai.Client
	dimension int
}

// NewOpenAIEmbedder creates a new OpenAI embedder instance.
func NewOpenAIEmbedder(cfg *config.EmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required for OpenAI embedder")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required for OpenAI embedder")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	embedder := &OpenAIEmbedder{
		config:    cfg,
		client:    openai.NewClientWithConfig(clientConfig),
		dimension: cfg.Dimension,
	}

	if embedder.dimension == 0 {
		switch cfg.Model {
		case "text-embedding-ada-002", "text-embedding-3-small":
			embedder.dimension = 1536
		case "text-embedding-3-large":
			embedder.dimension = 3072
		default:
			testEmbedding, err := embedder.Embed(context.Background(), "test")
			if err != nil {
				return nil, fmt.Errorf("failed to determine embedding dimension: %v", err)
			}
			embedder.dimension = len(testEmbedding)
		}
	}

	return embedder, nil
}

// Embed generates an embedding for a single text.
func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	results, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return results[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (o *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.config.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %v", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("received %d embeddings but expected %d", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

// Dimension returns the dimension of the embeddings.
func (o *OpenAIEmbedder) Dimension() int {
	return o.dimension
}
