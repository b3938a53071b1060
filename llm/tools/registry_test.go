package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

type echoTool struct{}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "echoes its input" }
func (e *echoTool) Schema() map[string]any {
	return map[string]any{"type": "object"}
}

func (e *echoTool) Execute(ctx context.Context, input *toolshared.ToolInput, llmProvider providershared.LLMProvider) (*toolshared.ToolResult, error) {
	return &toolshared.ToolResult{
		Success: true,
		Data:    input.Data,
	}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&echoTool{})

	tool, err := registry.Get("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", tool.Name())

	_, err = registry.Get("missing")
	assert.Error(t, err)

	assert.Len(t, registry.List(), 1)
}

func TestRegistryExecute(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&echoTool{})

	result, err := registry.Execute(context.Background(), &toolshared.ToolInput{
		Name: "echo",
		Data: map[string]interface{}{"message": "hi"},
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "hi", result.Data["message"])
	assert.GreaterOrEqual(t, result.Stats.ExecutionTime.Nanoseconds(), int64(0))

	_, err = registry.Execute(context.Background(), &toolshared.ToolInput{Name: "missing"}, nil)
	assert.Error(t, err)
}
