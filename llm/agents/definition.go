package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

// AgentInput carries one student query into an agent.
type AgentInput struct {
	Query     string           `json:"query"`
	InputType models.InputType `json:"input_type,omitempty"`
	StudentID int64            `json:"student_id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Data      map[string]any   `json:"data,omitempty"`
}

// AgentResult is the outcome of one agent execution.
type AgentResult struct {
	Content  string         `json:"content"`
	Success  bool           `json:"success"`
	Stats    AgentStats     `json:"stats"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AgentStats tracks execution statistics.
type AgentStats struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	TokensUsed int           `json:"tokens_used,omitempty"`
	CallsMade  int           `json:"calls_made,omitempty"`
}

// Agent is one named role of the platform.
type Agent interface {
	Name() string
	Description() string
	Capabilities() []string
	Execute(ctx context.Context, input *AgentInput, llm shared.LLMProvider) (*AgentResult, error)
}

// Registry manages agent registration and execution.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
	llm    shared.LLMProvider
}

// NewRegistry creates a registry that executes agents against the given
// provider.
func NewRegistry(llm shared.LLMProvider) *Registry {
	return &Registry{
		agents: make(map[string]Agent),
		llm:    llm,
	}
}

// Register adds an agent to the registry.
func (r *Registry) Register(agent Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.Name()] = agent
}

// Get retrieves an agent by name.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("agent not found: %s", name)
	}
	return agent, nil
}

// List returns all registered agents.
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		agents = append(agents, agent)
	}
	return agents
}

// Execute runs an agent by name and fills in execution stats.
func (r *Registry) Execute(ctx context.Context, name string, input *AgentInput) (*AgentResult, error) {
	agent, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := agent.Execute(ctx, input, r.llm)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	result.Stats.StartedAt = start
	result.Stats.Duration = time.Since(start)
	return result, nil
}
