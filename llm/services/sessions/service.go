// Package sessions manages student conversation sessions. Sessions live in
// memory with a bounded context window; individual exchanges are persisted
// through the data store when one is attached.
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
)

// Message represents one message within a session.
type Message struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"` // user, assistant
	Content   string           `json:"content"`
	InputType models.InputType `json:"input_type,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Session represents an ongoing exchange between a student and the agents.
type Session struct {
	ID        string     `json:"id"`
	StudentID int64      `json:"student_id"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Config holds session service configuration.
type Config struct {
	MaxMessages   int `json:"max_messages"`
	ContextWindow int `json:"context_window"`
}

// DefaultConfig returns the default session limits.
func DefaultConfig() *Config {
	return &Config{
		MaxMessages:   100,
		ContextWindow: 50,
	}
}

// Service manages session lifecycle and history.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	config   *Config
	store    store.DataStore
}

// NewService creates a session service. The data store is optional; when nil,
// interactions are kept in memory only.
func NewService(config *Config, dataStore store.DataStore) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		sessions: make(map[string]*Session),
		config:   config,
		store:    dataStore,
	}
}

// Create starts a new session for a student.
func (s *Service) Create(studentID int64) (*Session, error) {
	if studentID <= 0 {
		return nil, fmt.Errorf("student ID is required")
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Messages:  []*Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return session, nil
}

// AppendExchange records one query/response pair on the session and persists
// it as an interaction when a data store is attached. Messages beyond the
// context window are trimmed oldest-first.
func (s *Service) AppendExchange(ctx context.Context, sessionID string, inputType models.InputType, query, response string) error {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("session not found: %s", sessionID)
	}

	now := time.Now().UTC()
	session.Messages = append(session.Messages,
		&Message{ID: uuid.NewString(), Role: "user", Content: query, InputType: inputType, Timestamp: now},
		&Message{ID: uuid.NewString(), Role: "assistant", Content: response, Timestamp: now},
	)
	session.UpdatedAt = now

	if len(session.Messages) > s.config.ContextWindow {
		start := len(session.Messages) - s.config.ContextWindow
		session.Messages = session.Messages[start:]
	}
	studentID := session.StudentID
	s.mu.Unlock()

	if s.store != nil {
		interaction := &models.Interaction{
			StudentID:     studentID,
			SessionID:     sessionID,
			InputType:     inputType,
			InputContent:  query,
			AgentResponse: response,
			Timestamp:     now,
		}
		if err := s.store.CreateInteraction(ctx, interaction); err != nil {
			return fmt.Errorf("failed to persist interaction: %w", err)
		}
	}

	return nil
}

// Messages retrieves the most recent messages from a session. A limit of
// zero returns the full window.
func (s *Service) Messages(sessionID string, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	messages := session.Messages
	if limit > 0 && len(messages) > limit {
		start := len(messages) - limit
		messages = messages[start:]
	}

	out := make([]*Message, len(messages))
	copy(out, messages)
	return out, nil
}

// History loads the persisted interactions for a session from the data store.
func (s *Service) History(ctx context.Context, sessionID string) ([]models.Interaction, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no data store attached")
	}
	return s.store.ListInteractionsBySession(ctx, sessionID)
}

// Delete removes a session. Persisted interactions are kept.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("session not found: %s", id)
	}
	delete(s.sessions, id)
	return nil
}

// List returns all active session IDs.
func (s *Service) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
