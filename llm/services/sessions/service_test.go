package sessions

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
)

func newTestStore(t *testing.T) store.DataStore {
	t.Helper()
	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })
	return dataStore
}

func TestCreateAndGetSession(t *testing.T) {
	service := NewService(nil, nil)

	session, err := service.Create(1)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, int64(1), session.StudentID)

	got, err := service.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = service.Get("missing")
	assert.Error(t, err)
}

func TestCreateRequiresStudent(t *testing.T) {
	service := NewService(nil, nil)

	_, err := service.Create(0)
	assert.Error(t, err)
}

func TestAppendExchangePersistsInteraction(t *testing.T) {
	dataStore := newTestStore(t)
	service := NewService(nil, dataStore)
	ctx := context.Background()

	session, err := service.Create(1)
	require.NoError(t, err)

	err = service.AppendExchange(ctx, session.ID, models.InputTypeText, "What are fractions?", "Fractions are parts of a whole.")
	require.NoError(t, err)

	messages, err := service.Messages(session.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "What are fractions?", messages[0].Content)
	assert.Equal(t, "assistant", messages[1].Role)

	history, err := service.History(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "What are fractions?", history[0].InputContent)
	assert.Equal(t, models.InputTypeText, history[0].InputType)
}

func TestContextWindowTrimming(t *testing.T) {
	service := NewService(&Config{MaxMessages: 100, ContextWindow: 6}, nil)
	ctx := context.Background()

	session, err := service.Create(1)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := service.AppendExchange(ctx, session.ID, models.InputTypeText,
			fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}

	messages, err := service.Messages(session.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 6)
	// Oldest exchanges were trimmed; only the last three remain.
	assert.Equal(t, "question 2", messages[0].Content)
	assert.Equal(t, "answer 4", messages[5].Content)
}

func TestMessagesLimit(t *testing.T) {
	service := NewService(nil, nil)
	ctx := context.Background()

	session, err := service.Create(1)
	require.NoError(t, err)
	require.NoError(t, service.AppendExchange(ctx, session.ID, models.InputTypeText, "q1", "a1"))
	require.NoError(t, service.AppendExchange(ctx, session.ID, models.InputTypeText, "q2", "a2"))

	messages, err := service.Messages(session.ID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "q2", messages[0].Content)
	assert.Equal(t, "a2", messages[1].Content)
}

func TestDeleteAndList(t *testing.T) {
	service := NewService(nil, nil)

	first, err := service.Create(1)
	require.NoError(t, err)
	second, err := service.Create(2)
	require.NoError(t, err)

	assert.Len(t, service.List(), 2)

	require.NoError(t, service.Delete(first.ID))
	assert.Error(t, service.Delete(first.ID))

	ids := service.List()
	require.Len(t, ids, 1)
	assert.Equal(t, second.ID, ids[0])
}

func TestHistoryRequiresStore(t *testing.T) {
	service := NewService(nil, nil)

	_, err := service.History(context.Background(), "any")
	assert.Error(t, err)
}
