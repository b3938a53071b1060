package planning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

const (
	defaultPlanDays       = 7
	defaultSessionMinutes = 60
	sessionStartHour      = 17 // sessions default to 5pm local time
)

// Session is one planned study slot.
type Session struct {
	Subject  string    `json:"subject"`
	Topic    string    `json:"topic"`
	Start    time.Time `json:"start"`
	Minutes  int       `json:"minutes"`
	Progress float64   `json:"current_completion"`
}

// Planner builds study plans from a student's progress gaps and can
// schedule the sessions on their calendar.
type Planner struct {
	store store.DataStore
	tools *tools.Registry
	model string
	now   func() time.Time
}

// NewPlanner creates the planning agent.
func NewPlanner(dataStore store.DataStore, toolRegistry *tools.Registry, model string) *Planner {
	return &Planner{
		store: dataStore,
		tools: toolRegistry,
		model: model,
		now:   time.Now,
	}
}

// Name returns the agent name
func (p *Planner) Name() string { return "planning" }

// Description returns the agent description
func (p *Planner) Description() string {
	return "Builds a study plan covering the student's weakest topics first, optionally scheduling the sessions on their calendar."
}

// Capabilities lists what the agent can do
func (p *Planner) Capabilities() []string {
	return []string{"study planning", "session scheduling"}
}

// Execute builds the plan. When the query asks for scheduling, each session
// is created through the calendar tool.
func (p *Planner) Execute(ctx context.Context, input *agents.AgentInput, llm providershared.LLMProvider) (*agents.AgentResult, error) {
	if input.StudentID == 0 {
		return &agents.AgentResult{
			Success:  false,
			Metadata: map[string]any{"error": "student_id is required for planning"},
		}, nil
	}

	progress, err := p.store.ListProgressByStudent(ctx, input.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	days := defaultPlanDays
	if input.Data != nil {
		if v, ok := input.Data["days"].(float64); ok && v > 0 {
			days = int(v)
		}
	}

	sessions := BuildPlan(progress, days, p.now())
	if len(sessions) == 0 {
		return &agents.AgentResult{
			Content:  "Everything is completed - no study sessions needed right now.",
			Success:  true,
			Metadata: map[string]any{"sessions": sessions},
		}, nil
	}

	metadata := map[string]any{"sessions": sessions}

	if wantsScheduling(input.Query) {
		scheduled := p.schedule(ctx, sessions, llm)
		metadata["scheduled_events"] = scheduled
	}

	return &agents.AgentResult{
		Content:  p.summarize(ctx, sessions, llm),
		Success:  true,
		Metadata: metadata,
	}, nil
}

// BuildPlan assigns one session per day to the least-complete topics,
// earliest gaps first. Completed topics are skipped.
func BuildPlan(progress []models.LearningProgress, days int, from time.Time) []Session {
	var gaps []models.LearningProgress
	for _, p := range progress {
		if !p.IsCompleted() {
			gaps = append(gaps, p)
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].CompletionPercentage != gaps[j].CompletionPercentage {
			return gaps[i].CompletionPercentage < gaps[j].CompletionPercentage
		}
		return gaps[i].Topic < gaps[j].Topic
	})

	if len(gaps) > days {
		gaps = gaps[:days]
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), sessionStartHour, 0, 0, 0, from.Location()).AddDate(0, 0, 1)

	sessions := make([]Session, 0, len(gaps))
	for i, gap := range gaps {
		sessions = append(sessions, Session{
			Subject:  gap.Subject,
			Topic:    gap.Topic,
			Start:    day.AddDate(0, 0, i),
			Minutes:  defaultSessionMinutes,
			Progress: gap.CompletionPercentage,
		})
	}
	return sessions
}

// schedule creates a calendar event per session. Failures are collected
// rather than aborting the plan.
func (p *Planner) schedule(ctx context.Context, sessions []Session, llm providershared.LLMProvider) []map[string]any {
	var scheduled []map[string]any
	for _, session := range sessions {
		result, err := p.tools.Execute(ctx, &toolshared.ToolInput{
			Name: "calendar",
			Data: map[string]interface{}{
				"action":           "create",
				"title":            fmt.Sprintf("Study %s: %s", session.Subject, session.Topic),
				"description":      fmt.Sprintf("Current completion: %.0f%%", session.Progress),
				"start_time":       session.Start.Format(time.RFC3339),
				"duration_minutes": float64(session.Minutes),
			},
		}, llm)

		entry := map[string]any{
			"topic": session.Topic,
			"start": session.Start.Format(time.RFC3339),
		}
		switch {
		case err != nil:
			entry["error"] = err.Error()
		case !result.Success:
			entry["error"] = result.Error
		default:
			entry["event_id"] = result.Data["event_id"]
		}
		scheduled = append(scheduled, entry)
	}
	return scheduled
}

func (p *Planner) summarize(ctx context.Context, sessions []Session, llm providershared.LLMProvider) string {
	var lines []string
	for _, s := range sessions {
		lines = append(lines, fmt.Sprintf("%s %s: %s/%s (%.0f%% complete)",
			s.Start.Format("Mon Jan 2"), s.Start.Format("15:04"), s.Subject, s.Topic, s.Progress))
	}
	fallback := "Study plan:\n" + strings.Join(lines, "\n")

	resp, err := llm.Complete(ctx, &providershared.CompletionRequest{
		System: agents.PlanningSystemPrompt,
		Messages: []providershared.Message{
			{Role: providershared.RoleUser, Content: fallback},
		},
		Options: providershared.CompletionOptions{
			Model: p.model,
		},
	})
	if err != nil || resp.Content == "" {
		return fallback
	}
	return resp.Content
}

func wantsScheduling(query string) bool {
	lowered := strings.ToLower(query)
	for _, keyword := range []string{"schedule", "calendar", "book"} {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
