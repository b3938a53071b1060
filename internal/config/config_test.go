package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "milvus", cfg.VectorStore.Provider)
	assert.Equal(t, "curriculum", cfg.VectorStore.Collection)
	assert.Equal(t, 384, cfg.VectorStore.Dimension)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	assert.Equal(t, "gemma3n", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Flow.MaxRetries)
	assert.Equal(t, 30.0, cfg.MCP.Timeout)
	assert.Equal(t, 10, cfg.MCP.MaxConnections)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlatformConfig)
		wantErr bool
	}{
		{
			name:    "valid default",
			mutate:  func(c *PlatformConfig) {},
			wantErr: false,
		},
		{
			name: "missing sqlite path",
			mutate: func(c *PlatformConfig) {
				c.Store.Path = ""
			},
			wantErr: true,
		},
		{
			name: "postgres without dsn",
			mutate: func(c *PlatformConfig) {
				c.Store.Driver = "postgres"
			},
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			mutate: func(c *PlatformConfig) {
				c.Store.Driver = "postgres"
				c.Store.DSN = "host=localhost user=platform dbname=platform"
			},
			wantErr: false,
		},
		{
			name: "unknown store driver",
			mutate: func(c *PlatformConfig) {
				c.Store.Driver = "mongodb"
			},
			wantErr: true,
		},
		{
			name: "missing collection",
			mutate: func(c *PlatformConfig) {
				c.VectorStore.Collection = ""
			},
			wantErr: true,
		},
		{
			name: "overlap larger than chunk size",
			mutate: func(c *PlatformConfig) {
				c.ChunkSize = 100
				c.ChunkOverlap = 100
			},
			wantErr: true,
		},
		{
			name: "unknown embeddings provider",
			mutate: func(c *PlatformConfig) {
				c.Embeddings.Provider = "huggingface"
			},
			wantErr: true,
		},
		{
			name: "zero llm timeout",
			mutate: func(c *PlatformConfig) {
				c.LLM.Timeout = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platform-config.json")

	cfg := DefaultConfig()
	cfg.VectorStore.Collection = "custom_collection"
	cfg.LLM.Model = "llama3.2"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom_collection", loaded.VectorStore.Collection)
	assert.Equal(t, "llama3.2", loaded.LLM.Model)
	// Defaults survive the round trip.
	assert.Equal(t, 3, loaded.Flow.MaxRetries)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFromFile("does-not-exist.json")
	assert.Error(t, err)
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"
	cfg.Embeddings.APIKey = "sk-other"
	cfg.Store.DSN = "password=hunter2"

	s := cfg.String()
	assert.NotContains(t, s, "sk-secret")
	assert.NotContains(t, s, "sk-other")
	assert.NotContains(t, s, "hunter2")
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm": {"provider": "openai", "model": "gpt-4o-mini", "timeout": 60, "temperature": 0.5}}`), 0644))

	loaded, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", loaded.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", loaded.LLM.Model)
	// Untouched sections keep defaults.
	assert.Equal(t, "sqlite", loaded.Store.Driver)
}
