package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpapi "github.com/mark3labs/mcp-go/mcp"

	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

// toolCaller is the slice of the MCP client the adapter needs.
type toolCaller interface {
	CallTool(ctx context.Context, request mcpapi.CallToolRequest) (*mcpapi.CallToolResult, error)
}

// remoteTool adapts one tool exposed by an MCP server to the platform
// tool interface. Registered names are prefixed with the server name so
// tools from different servers cannot collide.
type remoteTool struct {
	serverName  string
	client      toolCaller
	name        string
	description string
	schema      map[string]any
	timeout     time.Duration
}

func newRemoteTool(serverName string, client toolCaller, def mcpapi.Tool, timeout time.Duration) *remoteTool {
	schema := map[string]any{
		"type": def.InputSchema.Type,
	}
	if def.InputSchema.Properties != nil {
		schema["properties"] = def.InputSchema.Properties
	}
	if len(def.InputSchema.Required) > 0 {
		schema["required"] = def.InputSchema.Required
	}

	return &remoteTool{
		serverName:  serverName,
		client:      client,
		name:        fmt.Sprintf("%s/%s", serverName, def.Name),
		description: def.Description,
		schema:      schema,
		timeout:     timeout,
	}
}

// Name returns the namespaced tool name
func (t *remoteTool) Name() string {
	return t.name
}

// Description returns the tool description
func (t *remoteTool) Description() string {
	return t.description
}

// Schema returns the JSON schema for input validation
func (t *remoteTool) Schema() map[string]any {
	return t.schema
}

// Execute forwards the call to the MCP server
func (t *remoteTool) Execute(ctx context.Context, input *toolshared.ToolInput, llmProvider providershared.LLMProvider) (*toolshared.ToolResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := mcpapi.CallToolRequest{}
	req.Params.Name = strings.TrimPrefix(input.Name, t.serverName+"/")
	req.Params.Arguments = input.Data

	result, err := t.client.CallTool(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("remote tool call failed: %w", err)
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return &toolshared.ToolResult{
			Success: false,
			Error:   text,
		}, nil
	}

	return &toolshared.ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"content": text,
			"server":  t.serverName,
		},
	}, nil
}

func flattenContent(content []mcpapi.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := item.(mcpapi.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
