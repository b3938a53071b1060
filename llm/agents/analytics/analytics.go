package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

// SubjectStats aggregates a student's progress within one subject.
type SubjectStats struct {
	Subject         string  `json:"subject"`
	Topics          int     `json:"topics"`
	CompletedTopics int     `json:"completed_topics"`
	AvgCompletion   float64 `json:"avg_completion"`
	AvgPerformance  float64 `json:"avg_performance"`
}

// Analytics reports on a student's learning progress.
type Analytics struct {
	store store.DataStore
	tools *tools.Registry
	model string
}

// NewAnalytics creates the analytics agent.
func NewAnalytics(dataStore store.DataStore, toolRegistry *tools.Registry, model string) *Analytics {
	return &Analytics{
		store: dataStore,
		tools: toolRegistry,
		model: model,
	}
}

// Name returns the agent name
func (a *Analytics) Name() string { return "analytics" }

// Description returns the agent description
func (a *Analytics) Description() string {
	return "Aggregates a student's learning progress into per-subject statistics and renders progress dashboards."
}

// Capabilities lists what the agent can do
func (a *Analytics) Capabilities() []string {
	return []string{"progress aggregation", "natural-language filters", "dashboard rendering"}
}

// Execute aggregates progress for the student, optionally filtered by a
// subject the query mentions, and renders a chart when one is requested.
func (a *Analytics) Execute(ctx context.Context, input *agents.AgentInput, llm providershared.LLMProvider) (*agents.AgentResult, error) {
	if input.StudentID == 0 {
		return &agents.AgentResult{
			Success:  false,
			Metadata: map[string]any{"error": "student_id is required for analytics"},
		}, nil
	}

	subject := a.extractSubjectFilter(ctx, input.Query, llm)

	var records []models.LearningProgress
	var err error
	if subject != "" {
		records, err = a.store.ListProgressBySubject(ctx, subject, input.StudentID)
	} else {
		records, err = a.store.ListProgressByStudent(ctx, input.StudentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	stats := Aggregate(records)

	metadata := map[string]any{
		"subject_filter": subject,
		"stats":          stats,
	}

	if wantsChart(input.Query) {
		if chartPath, err := a.renderChart(ctx, input.StudentID, subject, llm); err == nil {
			metadata["chart_path"] = chartPath
		}
	}

	return &agents.AgentResult{
		Content:  formatReport(stats),
		Success:  true,
		Metadata: metadata,
	}, nil
}

// Aggregate groups progress records into per-subject statistics, sorted by
// subject name.
func Aggregate(records []models.LearningProgress) []SubjectStats {
	bySubject := make(map[string][]models.LearningProgress)
	for _, r := range records {
		bySubject[r.Subject] = append(bySubject[r.Subject], r)
	}

	stats := make([]SubjectStats, 0, len(bySubject))
	for subject, rs := range bySubject {
		s := SubjectStats{Subject: subject, Topics: len(rs)}
		for _, r := range rs {
			s.AvgCompletion += r.CompletionPercentage
			s.AvgPerformance += r.PerformanceScore
			if r.IsCompleted() {
				s.CompletedTopics++
			}
		}
		s.AvgCompletion /= float64(len(rs))
		s.AvgPerformance /= float64(len(rs))
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Subject < stats[j].Subject })
	return stats
}

// extractSubjectFilter asks the LLM to translate the query into a subject
// filter. Any failure means no filter.
func (a *Analytics) extractSubjectFilter(ctx context.Context, query string, llm providershared.LLMProvider) string {
	resp, err := llm.Complete(ctx, &providershared.CompletionRequest{
		System: agents.AnalyticsFilterSystemPrompt,
		Messages: []providershared.Message{
			{Role: providershared.RoleUser, Content: query},
		},
		Options: providershared.CompletionOptions{
			Model:          a.model,
			Temperature:    0,
			ResponseFormat: providershared.ResponseFormatJSON,
		},
	})
	if err != nil {
		return ""
	}

	var parsed struct {
		Subject string `json:"subject"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return ""
	}
	return parsed.Subject
}

func (a *Analytics) renderChart(ctx context.Context, studentID int64, subject string, llm providershared.LLMProvider) (string, error) {
	data := map[string]interface{}{"student_id": float64(studentID)}
	if subject != "" {
		data["subject"] = subject
	}

	result, err := a.tools.Execute(ctx, &toolshared.ToolInput{
		Name: "progress_chart",
		Data: data,
	}, llm)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("chart rendering failed: %s", result.Error)
	}

	path, _ := result.Data["chart_path"].(string)
	return path, nil
}

func wantsChart(query string) bool {
	lowered := strings.ToLower(query)
	for _, keyword := range []string{"chart", "dashboard", "graph", "visual"} {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func formatReport(stats []SubjectStats) string {
	if len(stats) == 0 {
		return "No progress recorded yet."
	}

	var b strings.Builder
	for _, s := range stats {
		fmt.Fprintf(&b, "%s: %d/%d topics completed, %.0f%% average completion, %.0f average performance\n",
			s.Subject, s.CompletedTopics, s.Topics, s.AvgCompletion, s.AvgPerformance)
	}
	return strings.TrimSpace(b.String())
}
