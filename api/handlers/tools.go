package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/VarunStarz/sahayak-edu-local/api"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

// ToolHandler handles tool-related HTTP requests
type ToolHandler struct {
	tools *tools.Registry
	llm   shared.LLMProvider
}

// NewToolHandler creates a new tool handler
func NewToolHandler(registry *tools.Registry, llm shared.LLMProvider) *ToolHandler {
	return &ToolHandler{
		tools: registry,
		llm:   llm,
	}
}

// ExecuteTool handles POST /tools/{name}
func (h *ToolHandler) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	toolName := mux.Vars(r)["name"]
	if toolName == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid tool name", "Tool name is required")
		return
	}

	var req api.ExecuteToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON request", err.Error())
		return
	}

	if _, err := h.tools.Get(toolName); err != nil {
		writeJSONError(w, http.StatusNotFound, "Tool not found", err.Error())
		return
	}

	result, err := h.tools.Execute(r.Context(), &toolshared.ToolInput{
		Name: toolName,
		Data: req.Input,
	}, h.llm)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Tool execution failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, api.ToolResponse{
		Success: result.Success,
		Output:  result.Data,
		Error:   result.Error,
		Stats:   result.Stats,
	})
}

// ListTools handles GET /tools
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	registered := h.tools.List()

	infos := make([]api.ToolInfo, 0, len(registered))
	for _, tool := range registered {
		infos = append(infos, api.ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			Schema:      tool.Schema(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	writeJSON(w, http.StatusOK, map[string]any{"tools": infos})
}
