package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/VarunStarz/sahayak-edu-local/api"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/services/sessions"
)

// ExchangeRecorder indexes an answered query/response pair so repeated
// questions can be served from history.
type ExchangeRecorder interface {
	Record(ctx context.Context, query, response string) error
}

// AgentHandler handles agent-related HTTP requests
type AgentHandler struct {
	agents   *agents.Registry
	sessions *sessions.Service
	recorder ExchangeRecorder
	logger   zerolog.Logger
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(registry *agents.Registry, sessionService *sessions.Service, recorder ExchangeRecorder, logger zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		agents:   registry,
		sessions: sessionService,
		recorder: recorder,
		logger:   logger,
	}
}

// ExecuteAgent handles POST /agents/{name}
func (h *AgentHandler) ExecuteAgent(w http.ResponseWriter, r *http.Request) {
	agentName := mux.Vars(r)["name"]
	if agentName == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid agent name", "Agent name is required")
		return
	}

	var req api.ExecuteAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON request", err.Error())
		return
	}

	if req.Query == "" {
		writeJSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "query field is required")
		return
	}

	if _, err := h.agents.Get(agentName); err != nil {
		writeJSONError(w, http.StatusNotFound, "Agent not found", err.Error())
		return
	}

	input := &agents.AgentInput{
		Query:     req.Query,
		InputType: req.InputType,
		StudentID: req.StudentID,
		SessionID: req.SessionID,
		Data:      req.Data,
	}

	result, err := h.agents.Execute(r.Context(), agentName, input)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Agent execution failed", err.Error())
		return
	}

	if req.SessionID != "" && h.sessions != nil && result.Success {
		if err := h.sessions.AppendExchange(r.Context(), req.SessionID, req.InputType, req.Query, result.Content); err != nil {
			h.logger.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to record exchange")
		}
	}

	// Index fresh answers for recall. Answers that already came from
	// history are not re-indexed.
	if h.recorder != nil && result.Success && result.Content != "" && result.Metadata["source"] != "history" {
		if err := h.recorder.Record(r.Context(), req.Query, result.Content); err != nil {
			h.logger.Warn().Err(err).Msg("failed to index exchange for recall")
		}
	}

	writeJSON(w, http.StatusOK, api.AgentResponse{
		Success:  result.Success,
		Result:   result.Content,
		Metadata: result.Metadata,
		Duration: result.Stats.Duration.String(),
	})
}

// ListAgents handles GET /agents
func (h *AgentHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	registered := h.agents.List()

	infos := make([]api.AgentInfo, 0, len(registered))
	for _, agent := range registered {
		infos = append(infos, api.AgentInfo{
			Name:         agent.Name(),
			Description:  agent.Description(),
			Capabilities: agent.Capabilities(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	writeJSON(w, http.StatusOK, map[string]any{"agents": infos})
}
