package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

// FakeProvider implements LLMProvider for testing purposes
type FakeProvider struct {
	mu          sync.RWMutex
	responses   map[string]*shared.CompletionResponse
	delays      map[string]time.Duration
	errors      map[string]error
	callCount   int
	lastRequest *shared.CompletionRequest
}

// NewFakeProvider creates a new fake provider for testing
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		responses: make(map[string]*shared.CompletionResponse),
		delays:    make(map[string]time.Duration),
		errors:    make(map[string]error),
	}
}

// AddResponse adds a canned response for a specific prompt
func (fp *FakeProvider) AddResponse(prompt string, response *shared.CompletionResponse) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.responses[prompt] = response
}

// AddDelay adds a delay for a specific prompt
func (fp *FakeProvider) AddDelay(prompt string, delay time.Duration) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.delays[prompt] = delay
}

// AddError adds an error for a specific prompt
func (fp *FakeProvider) AddError(prompt string, err error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.errors[prompt] = err
}

// GetCallCount returns the number of calls made to the provider
func (fp *FakeProvider) GetCallCount() int {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.callCount
}

// GetLastRequest returns the last request made to the provider
func (fp *FakeProvider) GetLastRequest() *shared.CompletionRequest {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.lastRequest
}

// Name returns the provider name
func (fp *FakeProvider) Name() string { return "fake" }

// CountTokens returns a mock token count
func (fp *FakeProvider) CountTokens(messages []shared.Message, model string) (int, error) {
	totalTokens := 0
	for _, msg := range messages {
		totalTokens += len(msg.Content) / 4
		totalTokens += 4
	}
	return totalTokens, nil
}

// Complete performs a mock completion request. Canned responses are keyed
// by the first user message in the request.
func (fp *FakeProvider) Complete(ctx context.Context, req *shared.CompletionRequest) (*shared.CompletionResponse, error) {
	fp.mu.Lock()
	fp.callCount++
	fp.lastRequest = req
	fp.mu.Unlock()

	var key string
	for _, msg := range req.Messages {
		if msg.Role == shared.RoleUser && msg.Content != "" {
			key = msg.Content
			break
		}
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	if err, exists := fp.errors[key]; exists {
		return nil, err
	}

	if delay, exists := fp.delays[key]; exists {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if response, exists := fp.responses[key]; exists {
		return response, nil
	}

	return &shared.CompletionResponse{
		Content: fmt.Sprintf("Mock response for: %s", key),
		Usage: shared.TokenUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
		StopReason: "stop",
	}, nil
}
