package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

// Categories the router can delegate to.
var categories = []string{"analytics", "curriculum", "planning", "response"}

// Keyword fallback used when the LLM classification fails or returns an
// unknown category.
var keywordRoutes = map[string][]string{
	"analytics":  {"progress", "score", "performance", "dashboard", "how am i doing", "stats"},
	"curriculum": {"what should i learn", "next topic", "sequence", "pacing", "syllabus", "curriculum"},
	"planning":   {"plan", "schedule", "calendar", "study session", "when should"},
}

// Router classifies incoming queries and delegates to the matching agent.
type Router struct {
	registry *agents.Registry
	model    string
}

// NewRouter creates a router that delegates through the given registry.
func NewRouter(registry *agents.Registry, model string) *Router {
	return &Router{
		registry: registry,
		model:    model,
	}
}

// Name returns the agent name
func (r *Router) Name() string { return "router" }

// Description returns the agent description
func (r *Router) Description() string {
	return "Classifies student requests and delegates them to the analytics, curriculum, planning, or response agent."
}

// Capabilities lists what the agent can do
func (r *Router) Capabilities() []string {
	return []string{"query classification", "agent delegation"}
}

// Execute classifies the query and runs the selected agent.
func (r *Router) Execute(ctx context.Context, input *agents.AgentInput, llm shared.LLMProvider) (*agents.AgentResult, error) {
	if !models.ValidateInput(input.InputType, input.Query) {
		return &agents.AgentResult{
			Success:  false,
			Metadata: map[string]any{"error": fmt.Sprintf("invalid %s input", input.InputType)},
		}, nil
	}

	category, method := r.classify(ctx, input.Query, llm)

	result, err := r.registry.Execute(ctx, category, input)
	if err != nil {
		return nil, fmt.Errorf("failed to delegate to %s: %w", category, err)
	}

	if result.Metadata == nil {
		result.Metadata = make(map[string]any)
	}
	result.Metadata["routed_to"] = category
	result.Metadata["routing_method"] = method
	return result, nil
}

// classify asks the LLM for a category and falls back to keyword matching.
func (r *Router) classify(ctx context.Context, query string, llm shared.LLMProvider) (category, method string) {
	resp, err := llm.Complete(ctx, &shared.CompletionRequest{
		System: agents.RouterSystemPrompt,
		Messages: []shared.Message{
			{Role: shared.RoleUser, Content: query},
		},
		Options: shared.CompletionOptions{
			Model:          r.model,
			Temperature:    0,
			ResponseFormat: shared.ResponseFormatJSON,
		},
	})
	if err == nil {
		var parsed struct {
			Category string `json:"category"`
		}
		if jsonErr := json.Unmarshal([]byte(resp.Content), &parsed); jsonErr == nil {
			for _, c := range categories {
				if parsed.Category == c {
					return c, "llm"
				}
			}
		}
	}

	return keywordClassify(query), "keyword"
}

func keywordClassify(query string) string {
	lowered := strings.ToLower(query)
	for _, category := range []string{"analytics", "planning", "curriculum"} {
		for _, keyword := range keywordRoutes[category] {
			if strings.Contains(lowered, keyword) {
				return category
			}
		}
	}
	return "response"
}
