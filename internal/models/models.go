// Package models defines the core entities used throughout the platform:
// students, their interactions with agents, per-topic learning progress,
// and curriculum content.
package models

import (
	"time"
)

// InputType identifies the modality of a student interaction.
type InputType string

const (
	InputTypeText  InputType = "text"
	InputTypeVoice InputType = "voice"
	InputTypeImage InputType = "image"
)

// Student represents a learner in the platform.
type Student struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	LearningPreferences string    `json:"learning_preferences"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// UpdatePreferences replaces the learning preferences and bumps the
// updated timestamp.
func (s *Student) UpdatePreferences(preferences string) {
	s.LearningPreferences = preferences
	s.UpdatedAt = time.Now().UTC()
}

// Interaction represents a single student exchange with an agent.
type Interaction struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	SessionID     string    `json:"session_id"`
	InputType     InputType `json:"input_type"`
	InputContent  string    `json:"input_content"`
	AgentResponse string    `json:"agent_response"`
	Timestamp     time.Time `json:"timestamp"`
}

// IsMultimodal reports whether the interaction carries voice or image input.
func (i *Interaction) IsMultimodal() bool {
	return i.InputType == InputTypeVoice || i.InputType == InputTypeImage
}

// LearningProgress tracks a student's advancement in one topic of a subject.
type LearningProgress struct {
	ID                   int64     `json:"id"`
	StudentID            int64     `json:"student_id"`
	Subject              string    `json:"subject"`
	Topic                string    `json:"topic"`
	CompletionPercentage float64   `json:"completion_percentage"`
	PerformanceScore     float64   `json:"performance_score"`
	LastAccessed         time.Time `json:"last_accessed"`
}

// IsCompleted reports whether the topic has been fully completed.
func (p *LearningProgress) IsCompleted() bool {
	return p.CompletionPercentage >= 100.0
}

// CurriculumContent is one piece of educational content. The text itself is
// chunked and embedded into the vector store; this row keeps the relational
// metadata for filtering and sequencing.
type CurriculumContent struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Subject         string    `json:"subject"`
	DifficultyLevel int       `json:"difficulty_level"` // 1 (intro) .. 10 (expert)
	ContentType     string    `json:"content_type"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AdvancedDifficultyThreshold marks the difficulty above which content is
// considered advanced.
const AdvancedDifficultyThreshold = 7

// IsAdvanced reports whether the content is above the advanced threshold.
func (c *CurriculumContent) IsAdvanced() bool {
	return c.DifficultyLevel > AdvancedDifficultyThreshold
}
