package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/VarunStarz/sahayak-edu-local/api"
	"github.com/VarunStarz/sahayak-edu-local/llm/services/sessions"
)

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	sessions *sessions.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *sessions.Service) *SessionHandler {
	return &SessionHandler{sessions: service}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON request", err.Error())
		return
	}

	session, err := h.sessions.Create(req.StudentID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Failed to create session", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, api.SessionResponse{
		ID:        session.ID,
		StudentID: session.StudentID,
		CreatedAt: session.CreatedAt,
	})
}

// GetMessages handles GET /sessions/{id}/messages
func (h *SessionHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := h.sessions.Messages(sessionID, limit)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Session not found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := h.sessions.Delete(sessionID); err != nil {
		writeJSONError(w, http.StatusNotFound, "Session not found", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
