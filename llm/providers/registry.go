package providers

import (
	"fmt"
	"sync"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/ollama"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/openai"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

// Registry manages provider instances
type Registry struct {
	providers map[string]shared.LLMProvider
	mu        sync.RWMutex
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]shared.LLMProvider),
	}
}

// NewRegistryFromConfig creates a registry with the configured provider
// registered under its name.
func NewRegistryFromConfig(cfg *config.LLMConfig) (*Registry, error) {
	registry := NewRegistry()

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	registry.RegisterProvider(provider.Name(), provider)

	return registry, nil
}

// NewProvider creates a provider instance for the configured backend.
func NewProvider(cfg *config.LLMConfig) (shared.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(&ollama.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.TimeoutDuration(),
		})
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// RegisterProvider registers a provider instance with a name
func (r *Registry) RegisterProvider(name string, provider shared.LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// GetProvider gets a registered provider by name
func (r *Registry) GetProvider(name string) (shared.LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	return provider, nil
}

// ListProviders returns a list of registered provider names
func (r *Registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
