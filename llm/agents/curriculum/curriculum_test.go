package curriculum

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/test"
)

func seedStore(t *testing.T) (store.DataStore, int64) {
	t.Helper()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })

	ctx := context.Background()
	student := &models.Student{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, dataStore.CreateStudent(ctx, student))

	// Average math completion 40% puts the working level at 3.
	for _, p := range []models.LearningProgress{
		{StudentID: student.ID, Subject: "math", Topic: "fractions", CompletionPercentage: 60},
		{StudentID: student.ID, Subject: "math", Topic: "decimals", CompletionPercentage: 20},
	} {
		progress := p
		require.NoError(t, dataStore.UpsertProgress(ctx, &progress))
	}

	for _, c := range []models.CurriculumContent{
		{Title: "Counting", Subject: "math", DifficultyLevel: 1},
		{Title: "Ratios", Subject: "math", DifficultyLevel: 4},
		{Title: "Percentages", Subject: "math", DifficultyLevel: 3},
		{Title: "Calculus", Subject: "math", DifficultyLevel: 9},
		{Title: "Cells", Subject: "science", DifficultyLevel: 3},
	} {
		content := c
		require.NoError(t, dataStore.CreateContent(ctx, &content))
	}

	return dataStore, student.ID
}

func TestCurriculumExecute(t *testing.T) {
	dataStore, studentID := seedStore(t)
	agent := NewCurriculum(dataStore, "gemma3n")

	result, err := agent.Execute(context.Background(), &agents.AgentInput{
		Query:     "what should i learn next",
		StudentID: studentID,
		Data:      map[string]any{"subject": "math"},
	}, test.NewFakeProvider())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "math", result.Metadata["subject"])
	assert.Equal(t, 3, result.Metadata["level"])

	sequence := result.Metadata["sequence"].([]SequenceItem)
	require.Len(t, sequence, 2)
	// Ordered easiest first; science content and out-of-range math excluded.
	assert.Equal(t, "Percentages", sequence[0].Title)
	assert.Equal(t, "Ratios", sequence[1].Title)
}

func TestCurriculumInfersSubject(t *testing.T) {
	dataStore, studentID := seedStore(t)
	agent := NewCurriculum(dataStore, "gemma3n")

	result, err := agent.Execute(context.Background(), &agents.AgentInput{
		Query:     "what next",
		StudentID: studentID,
	}, test.NewFakeProvider())
	require.NoError(t, err)
	assert.Equal(t, "math", result.Metadata["subject"])
}

func TestCurriculumNoProgressNoSubject(t *testing.T) {
	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })

	agent := NewCurriculum(dataStore, "gemma3n")
	result, err := agent.Execute(context.Background(), &agents.AgentInput{
		Query:     "what next",
		StudentID: 42,
	}, test.NewFakeProvider())
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestBuildSequenceOrdering(t *testing.T) {
	sequence := BuildSequence([]models.CurriculumContent{
		{ID: 1, Title: "B", Subject: "math", DifficultyLevel: 2},
		{ID: 2, Title: "A", Subject: "math", DifficultyLevel: 2},
		{ID: 3, Title: "C", Subject: "math", DifficultyLevel: 1},
		{ID: 4, Title: "D", Subject: "science", DifficultyLevel: 1},
	}, "math")

	require.Len(t, sequence, 3)
	assert.Equal(t, "C", sequence[0].Title)
	assert.Equal(t, "A", sequence[1].Title)
	assert.Equal(t, "B", sequence[2].Title)
}

func TestWorkingLevel(t *testing.T) {
	assert.Equal(t, 1, workingLevel(nil, "math"))

	progress := []models.LearningProgress{
		{Subject: "math", CompletionPercentage: 100},
		{Subject: "math", CompletionPercentage: 100},
	}
	assert.Equal(t, 6, workingLevel(progress, "math"))

	high := []models.LearningProgress{{Subject: "math", CompletionPercentage: 100}}
	for i := 0; i < 10; i++ {
		high = append(high, models.LearningProgress{Subject: "math", CompletionPercentage: 100})
	}
	assert.LessOrEqual(t, workingLevel(high, "math"), 10)
}
