package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/VarunStarz/sahayak-edu-local/api"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
)

// SystemHandler serves health and statistics endpoints
type SystemHandler struct {
	store   store.DataStore
	vectors vectorstore.VectorStore
	agents  *agents.Registry
	tools   *tools.Registry
	logger  zerolog.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(dataStore store.DataStore, vectors vectorstore.VectorStore, agentRegistry *agents.Registry, toolRegistry *tools.Registry, logger zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		store:   dataStore,
		vectors: vectors,
		agents:  agentRegistry,
		tools:   toolRegistry,
		logger:  logger,
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("store ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats handles GET /stats
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.CountStudents(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to count students", err.Error())
		return
	}

	interactions, err := h.store.CountInteractions(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to count interactions", err.Error())
		return
	}

	stats := api.StatsResponse{
		Students:     students,
		Interactions: interactions,
		Agents:       len(h.agents.List()),
		Tools:        len(h.tools.List()),
	}

	if h.vectors != nil {
		count, err := h.vectors.Count(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("vector count failed")
		} else {
			stats.VectorCount = count
		}
	}

	writeJSON(w, http.StatusOK, stats)
}
