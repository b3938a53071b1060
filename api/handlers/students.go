package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/VarunStarz/sahayak-edu-local/api"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

// StudentHandler handles student-related HTTP requests
type StudentHandler struct {
	store store.DataStore
	tools *tools.Registry
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(dataStore store.DataStore, toolRegistry *tools.Registry) *StudentHandler {
	return &StudentHandler{
		store: dataStore,
		tools: toolRegistry,
	}
}

func studentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// GetProgress handles GET /students/{id}/progress
func (h *StudentHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid student ID", "ID must be an integer")
		return
	}

	if _, err := h.store.GetStudent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Student not found", "")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to load student", err.Error())
		return
	}

	subject := r.URL.Query().Get("subject")

	var progress any
	if subject != "" {
		progress, err = h.store.ListProgressBySubject(r.Context(), subject, id)
	} else {
		progress, err = h.store.ListProgressByStudent(r.Context(), id)
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to load progress", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"student_id": id,
		"progress":   progress,
	})
}

// GetDashboard handles GET /students/{id}/dashboard. It renders a progress
// chart through the tool registry and returns its location.
func (h *StudentHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid student ID", "ID must be an integer")
		return
	}

	input := &toolshared.ToolInput{
		Name: "progress_chart",
		Data: map[string]any{"student_id": float64(id)},
	}
	if subject := r.URL.Query().Get("subject"); subject != "" {
		input.Data["subject"] = subject
	}

	result, err := h.tools.Execute(r.Context(), input, nil)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Dashboard rendering failed", err.Error())
		return
	}
	if !result.Success {
		writeJSONError(w, http.StatusNotFound, "Dashboard rendering failed", result.Error)
		return
	}

	writeJSON(w, http.StatusOK, api.ToolResponse{
		Success: true,
		Output:  result.Data,
	})
}
