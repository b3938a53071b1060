package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

const defaultSessionMinutes = 60

// Calendar schedules study sessions on Google Calendar.
type Calendar struct {
	service    *gcal.Service
	calendarID string
}

// NewCalendar creates the calendar tool from configuration.
func NewCalendar(ctx context.Context, cfg *config.CalendarConfig) (*Calendar, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("credentials_file is required for calendar tool")
	}

	opts := []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	if len(cfg.Scopes) > 0 {
		opts = append(opts, option.WithScopes(cfg.Scopes...))
	}

	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Calendar{
		service:    service,
		calendarID: calendarID,
	}, nil
}

// Name returns the tool name
func (c *Calendar) Name() string {
	return "calendar"
}

// Description returns the tool description
func (c *Calendar) Description() string {
	return "Schedules study sessions on the student's calendar and lists upcoming sessions. Supports 'create' with a title, start time, and duration, and 'list' for upcoming events."
}

// Schema returns the JSON schema for input validation
func (c *Calendar) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"create", "list"},
				"description": "Whether to create a study session or list upcoming ones",
			},
			"title": map[string]interface{}{
				"type":        "string",
				"description": "Title of the study session (create only)",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Details of what to study (create only)",
			},
			"start_time": map[string]interface{}{
				"type":        "string",
				"description": "Session start time in RFC3339 format (create only)",
			},
			"duration_minutes": map[string]interface{}{
				"type":        "integer",
				"description": "Session length in minutes (default 60)",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of events to list (default 10)",
			},
		},
		"required": []string{"action"},
	}
}

// Execute performs the calendar action
func (c *Calendar) Execute(ctx context.Context, input *toolshared.ToolInput, llmProvider providershared.LLMProvider) (*toolshared.ToolResult, error) {
	action, _ := input.Data["action"].(string)

	switch action {
	case "create":
		return c.createEvent(ctx, input)
	case "list":
		return c.listEvents(ctx, input)
	default:
		return &toolshared.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("unsupported action: %q", action),
		}, nil
	}
}

func (c *Calendar) createEvent(ctx context.Context, input *toolshared.ToolInput) (*toolshared.ToolResult, error) {
	title, ok := input.Data["title"].(string)
	if !ok || title == "" {
		return &toolshared.ToolResult{
			Success: false,
			Error:   "title field is required for create",
		}, nil
	}

	startRaw, ok := input.Data["start_time"].(string)
	if !ok {
		return &toolshared.ToolResult{
			Success: false,
			Error:   "start_time field is required for create",
		}, nil
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return &toolshared.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("invalid start_time: %v", err),
		}, nil
	}

	minutes := defaultSessionMinutes
	if v, ok := input.Data["duration_minutes"].(float64); ok && v > 0 {
		minutes = int(v)
	}
	end := start.Add(time.Duration(minutes) * time.Minute)

	description, _ := input.Data["description"].(string)

	event := &gcal.Event{
		Summary:     title,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &toolshared.ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"event_id": created.Id,
			"link":     created.HtmlLink,
			"start":    created.Start.DateTime,
			"end":      created.End.DateTime,
		},
	}, nil
}

func (c *Calendar) listEvents(ctx context.Context, input *toolshared.ToolInput) (*toolshared.ToolResult, error) {
	maxResults := int64(10)
	if v, ok := input.Data["max_results"].(float64); ok && v > 0 {
		maxResults = int64(v)
	}

	events, err := c.service.Events.List(c.calendarID).
		TimeMin(time.Now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(events.Items))
	for _, item := range events.Items {
		start := item.Start.DateTime
		if start == "" {
			start = item.Start.Date
		}
		items = append(items, map[string]interface{}{
			"event_id": item.Id,
			"title":    item.Summary,
			"start":    start,
		})
	}

	return &toolshared.ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"events": items,
			"count":  len(items),
		},
	}, nil
}
