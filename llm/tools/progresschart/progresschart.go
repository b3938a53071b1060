package progresschart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	providershared "github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

// ProgressChart renders a student's learning progress as an HTML chart.
type ProgressChart struct {
	store     store.DataStore
	outputDir string
}

// NewProgressChart creates the chart tool writing into outputDir.
func NewProgressChart(dataStore store.DataStore, outputDir string) *ProgressChart {
	if outputDir == "" {
		outputDir = "data/charts"
	}
	return &ProgressChart{
		store:     dataStore,
		outputDir: outputDir,
	}
}

// Name returns the tool name
func (p *ProgressChart) Name() string {
	return "progress_chart"
}

// Description returns the tool description
func (p *ProgressChart) Description() string {
	return "Generates a bar chart of a student's completion percentage and performance score per topic, optionally filtered by subject. Returns the path of the rendered HTML file."
}

// Schema returns the JSON schema for input validation
func (p *ProgressChart) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]interface{}{
			"student_id": map[string]interface{}{
				"type":        "integer",
				"description": "The ID of the student to chart",
			},
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "Optional subject to restrict the chart to",
			},
		},
		"required": []string{"student_id"},
	}
}

// Execute renders the chart
func (p *ProgressChart) Execute(ctx context.Context, input *toolshared.ToolInput, llmProvider providershared.LLMProvider) (*toolshared.ToolResult, error) {
	rawID, ok := input.Data["student_id"].(float64)
	if !ok {
		return &toolshared.ToolResult{
			Success: false,
			Error:   "student_id field is required and must be a number",
		}, nil
	}
	studentID := int64(rawID)

	subject, _ := input.Data["subject"].(string)

	var records []models.LearningProgress
	var err error
	if subject != "" {
		records, err = p.store.ListProgressBySubject(ctx, subject, studentID)
	} else {
		records, err = p.store.ListProgressByStudent(ctx, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	if len(records) == 0 {
		return &toolshared.ToolResult{
			Success: false,
			Error:   "no progress records found for student",
		}, nil
	}

	path, err := p.render(studentID, subject, records)
	if err != nil {
		return nil, err
	}

	return &toolshared.ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"chart_path": path,
			"topics":     len(records),
		},
	}, nil
}

func (p *ProgressChart) render(studentID int64, subject string, records []models.LearningProgress) (string, error) {
	title := fmt.Sprintf("Learning Progress - Student %d", studentID)
	if subject != "" {
		title = fmt.Sprintf("%s (%s)", title, subject)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	topics := make([]string, 0, len(records))
	completion := make([]opts.BarData, 0, len(records))
	performance := make([]opts.BarData, 0, len(records))
	for _, r := range records {
		label := r.Topic
		if subject == "" {
			label = fmt.Sprintf("%s/%s", r.Subject, r.Topic)
		}
		topics = append(topics, label)
		completion = append(completion, opts.BarData{Value: r.CompletionPercentage})
		performance = append(performance, opts.BarData{Value: r.PerformanceScore})
	}

	bar.SetXAxis(topics).
		AddSeries("Completion %", completion).
		AddSeries("Performance", performance)

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}

	filename := fmt.Sprintf("progress_%d_%d.html", studentID, time.Now().Unix())
	path := filepath.Join(p.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	return path, nil
}
