// Package api defines the request and response envelopes of the HTTP API.
package api

import (
	"time"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
)

// ExecuteAgentRequest represents a request to execute an agent
type ExecuteAgentRequest struct {
	Query     string           `json:"query"`
	InputType models.InputType `json:"input_type,omitempty"`
	StudentID int64            `json:"student_id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Data      map[string]any   `json:"data,omitempty"`
}

// AgentResponse represents the response from agent execution
type AgentResponse struct {
	Success  bool           `json:"success"`
	Result   string         `json:"result,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// AgentInfo describes one registered agent
type AgentInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// ExecuteToolRequest represents a request to execute a tool
type ExecuteToolRequest struct {
	Input map[string]any `json:"input"`
}

// ToolResponse represents the response from tool execution
type ToolResponse struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
	Stats   any            `json:"stats,omitempty"`
}

// ToolInfo describes one registered tool
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// CreateSessionRequest represents a request to open a session
type CreateSessionRequest struct {
	StudentID int64 `json:"student_id"`
}

// SessionResponse represents a created session
type SessionResponse struct {
	ID        string    `json:"id"`
	StudentID int64     `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StatsResponse reports platform counters
type StatsResponse struct {
	Students     int64 `json:"students"`
	Interactions int64 `json:"interactions"`
	Agents       int   `json:"agents"`
	Tools        int   `json:"tools"`
	VectorCount  int64 `json:"vector_count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
