package progresschart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

func seedProgress(t *testing.T) (store.DataStore, int64) {
	t.Helper()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })

	ctx := context.Background()
	student := &models.Student{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, dataStore.CreateStudent(ctx, student))

	for _, p := range []models.LearningProgress{
		{StudentID: student.ID, Subject: "math", Topic: "fractions", CompletionPercentage: 80, PerformanceScore: 75},
		{StudentID: student.ID, Subject: "math", Topic: "decimals", CompletionPercentage: 40, PerformanceScore: 60},
		{StudentID: student.ID, Subject: "science", Topic: "plants", CompletionPercentage: 100, PerformanceScore: 90},
	} {
		progress := p
		require.NoError(t, dataStore.UpsertProgress(ctx, &progress))
	}

	return dataStore, student.ID
}

func TestProgressChartExecute(t *testing.T) {
	dataStore, studentID := seedProgress(t)
	outputDir := t.TempDir()
	tool := NewProgressChart(dataStore, outputDir)

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "progress_chart",
		Data: map[string]interface{}{"student_id": float64(studentID)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Data["topics"])

	chartPath := result.Data["chart_path"].(string)
	content, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Learning Progress")
}

func TestProgressChartSubjectFilter(t *testing.T) {
	dataStore, studentID := seedProgress(t)
	tool := NewProgressChart(dataStore, t.TempDir())

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "progress_chart",
		Data: map[string]interface{}{"student_id": float64(studentID), "subject": "math"},
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Data["topics"])
}

func TestProgressChartNoRecords(t *testing.T) {
	dataStore, _ := seedProgress(t)
	tool := NewProgressChart(dataStore, t.TempDir())

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "progress_chart",
		Data: map[string]interface{}{"student_id": float64(999)},
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no progress records")
}

func TestProgressChartMissingStudentID(t *testing.T) {
	dataStore, _ := seedProgress(t)
	tool := NewProgressChart(dataStore, t.TempDir())

	result, err := tool.Execute(context.Background(), &toolshared.ToolInput{
		Name: "progress_chart",
		Data: map[string]interface{}{},
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
}
