package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
)

var _ Embedder = &OllamaEmbedder{}

// OllamaEmbedder generates embeddings via a local Ollama server.
type OllamaEmbedder struct {
	config     *config.EmbedderConfig
	httpClient *http.Client
	dimension  int
}

// NewOllamaEmbedder creates a new Ollama embedder instance.
func NewOllamaEmbedder(cfg *config.EmbedderConfig) (*OllamaEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required for Ollama embedder")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required for Ollama embedder")
	}

	embedder := &OllamaEmbedder{
		config:     cfg,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		dimension:  cfg.Dimension,
	}

	if embedder.dimension == 0 {
		// Probe the model with a test embedding to learn the dimension.
		testEmbedding, err := embedder.Embed(context.Background(), "test")
		if err != nil {
			return nil, fmt.Errorf("failed to determine embedding dimension: %v", err)
		}
		embedder.dimension = len(testEmbedding)
	}

	return embedder, nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding for a single text.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollamaEmbedRequest{
		Model:  o.config.Model,
		Prompt: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/api/embeddings", strings.TrimSuffix(o.config.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var ollamaResp ollamaEmbedResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}

	if len(ollamaResp.Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding")
	}

	return ollamaResp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts sequentially.
// The Ollama embeddings endpoint accepts one prompt per request.
func (o *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := o.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %v", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimension returns the dimension of the embeddings.
func (o *OllamaEmbedder) Dimension() int {
	return o.dimension
}
