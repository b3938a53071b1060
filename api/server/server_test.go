package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunStarz/sahayak-edu-local/api"
	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	providertest "github.com/VarunStarz/sahayak-edu-local/llm/providers/test"
	"github.com/VarunStarz/sahayak-edu-local/llm/services/sessions"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools/progresschart"
	toolshared "github.com/VarunStarz/sahayak-edu-local/llm/tools/shared"
)

type echoAgent struct{}

func (e *echoAgent) Name() string           { return "echo" }
func (e *echoAgent) Description() string    { return "echoes queries" }
func (e *echoAgent) Capabilities() []string { return []string{"echo"} }

func (e *echoAgent) Execute(ctx context.Context, input *agents.AgentInput, llm shared.LLMProvider) (*agents.AgentResult, error) {
	return &agents.AgentResult{
		Content: "echo: " + input.Query,
		Success: true,
	}, nil
}

// recallAgent stands in for an agent whose answer already came from history.
type recallAgent struct{}

func (a *recallAgent) Name() string           { return "recall" }
func (a *recallAgent) Description() string    { return "recalls past answers" }
func (a *recallAgent) Capabilities() []string { return nil }

func (a *recallAgent) Execute(ctx context.Context, input *agents.AgentInput, llm shared.LLMProvider) (*agents.AgentResult, error) {
	return &agents.AgentResult{
		Content:  "remembered answer",
		Success:  true,
		Metadata: map[string]any{"source": "history"},
	}, nil
}

// stubRecorder captures recorded exchanges.
type stubRecorder struct {
	queries   []string
	responses []string
}

func (s *stubRecorder) Record(ctx context.Context, query, response string) error {
	s.queries = append(s.queries, query)
	s.responses = append(s.responses, response)
	return nil
}

// lookupTool is a slash-namespaced tool in the shape the MCP manager
// registers remote tools under.
type lookupTool struct{}

func (l *lookupTool) Name() string           { return "notes/lookup" }
func (l *lookupTool) Description() string    { return "looks up notes" }
func (l *lookupTool) Schema() map[string]any { return map[string]any{"type": "object"} }

func (l *lookupTool) Execute(ctx context.Context, input *toolshared.ToolInput, llm shared.LLMProvider) (*toolshared.ToolResult, error) {
	return &toolshared.ToolResult{
		Success: true,
		Data:    map[string]any{"note": "found"},
	}, nil
}

func newTestServer(t *testing.T) (*Server, store.DataStore, *sessions.Service, *stubRecorder) {
	t.Helper()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })

	provider := providertest.NewFakeProvider()
	agentRegistry := agents.NewRegistry(provider)
	agentRegistry.Register(&echoAgent{})
	agentRegistry.Register(&recallAgent{})

	toolRegistry := tools.NewRegistry()
	toolRegistry.Register(progresschart.NewProgressChart(dataStore, t.TempDir()))
	toolRegistry.Register(&lookupTool{})

	sessionService := sessions.NewService(nil, dataStore)
	recorder := &stubRecorder{}

	srv := New(&config.ServerConfig{Address: ":0"}, &Dependencies{
		Store:    dataStore,
		Vectors:  vectorstore.NewMemoryStore(4),
		Agents:   agentRegistry,
		Tools:    toolRegistry,
		Sessions: sessionService,
		Recorder: recorder,
		LLM:      provider,
		Logger:   zerolog.Nop(),
	})
	return srv, dataStore, sessionService, recorder
}

func seedStudent(t *testing.T, dataStore store.DataStore) *models.Student {
	t.Helper()
	student := &models.Student{Name: "Asha Verma", Email: "asha@example.com"}
	require.NoError(t, dataStore.CreateStudent(context.Background(), student))
	return student
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListAgents(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Agents []api.AgentInfo `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Agents, 2)
	assert.Equal(t, "echo", body.Agents[0].Name)
	assert.Equal(t, []string{"echo"}, body.Agents[0].Capabilities)
	assert.Equal(t, "recall", body.Agents[1].Name)
}

func TestExecuteAgent(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/agents/echo", api.ExecuteAgentRequest{
		Query: "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "echo: hello", body.Result)
}

func TestExecuteAgentValidation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/agents/echo", api.ExecuteAgentRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/agents/unknown", api.ExecuteAgentRequest{Query: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecuteAgentRecordsSession(t *testing.T) {
	srv, dataStore, sessionService, _ := newTestServer(t)
	student := seedStudent(t, dataStore)

	session, err := sessionService.Create(student.ID)
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/agents/echo", api.ExecuteAgentRequest{
		Query:     "what are fractions",
		StudentID: student.ID,
		SessionID: session.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/sessions/"+session.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Messages []sessions.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "what are fractions", body.Messages[0].Content)
	assert.Equal(t, "echo: what are fractions", body.Messages[1].Content)
}

func TestSessionLifecycle(t *testing.T) {
	srv, dataStore, _, _ := newTestServer(t)
	student := seedStudent(t, dataStore)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/sessions", api.CreateSessionRequest{StudentID: student.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created api.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, student.ID, created.StudentID)

	rec = doJSON(t, srv.Handler(), http.MethodDelete, "/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/sessions/"+created.ID+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionRequiresStudent(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/sessions", api.CreateSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentProgress(t *testing.T) {
	srv, dataStore, _, _ := newTestServer(t)
	student := seedStudent(t, dataStore)
	ctx := context.Background()

	require.NoError(t, dataStore.UpsertProgress(ctx, &models.LearningProgress{
		StudentID: student.ID, Subject: "math", Topic: "Fractions",
		CompletionPercentage: 60, PerformanceScore: 72, LastAccessed: time.Now().UTC(),
	}))
	require.NoError(t, dataStore.UpsertProgress(ctx, &models.LearningProgress{
		StudentID: student.ID, Subject: "science", Topic: "Plants",
		CompletionPercentage: 30, PerformanceScore: 65, LastAccessed: time.Now().UTC(),
	}))

	path := fmt.Sprintf("/students/%d/progress", student.ID)
	rec := doJSON(t, srv.Handler(), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Progress []models.LearningProgress `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Progress, 2)

	rec = doJSON(t, srv.Handler(), http.MethodGet, path+"?subject=math", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body.Progress = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Progress, 1)
	assert.Equal(t, "Fractions", body.Progress[0].Topic)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/students/999/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentDashboard(t *testing.T) {
	srv, dataStore, _, _ := newTestServer(t)
	student := seedStudent(t, dataStore)

	require.NoError(t, dataStore.UpsertProgress(context.Background(), &models.LearningProgress{
		StudentID: student.ID, Subject: "math", Topic: "Fractions",
		CompletionPercentage: 60, PerformanceScore: 72, LastAccessed: time.Now().UTC(),
	}))

	rec := doJSON(t, srv.Handler(), http.MethodGet, fmt.Sprintf("/students/%d/dashboard", student.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Output["chart_path"])
}

func TestStatsEndpoint(t *testing.T) {
	srv, dataStore, _, _ := newTestServer(t)
	seedStudent(t, dataStore)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats api.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Students)
	assert.Equal(t, 2, stats.Agents)
	assert.Equal(t, 2, stats.Tools)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/agents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownToolReturns404(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/tools/unknown", api.ExecuteToolRequest{Input: map[string]any{}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTools(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []api.ToolInfo `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 2)
	assert.Equal(t, "notes/lookup", body.Tools[0].Name)
	assert.Equal(t, "progress_chart", body.Tools[1].Name)
	assert.NotEmpty(t, body.Tools[1].Schema)
}

func TestExecuteNamespacedTool(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/tools/notes/lookup", api.ExecuteToolRequest{
		Input: map[string]any{"query": "fractions"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "found", body.Output["note"])
}

func TestExecuteAgentRecordsExchange(t *testing.T) {
	srv, _, _, recorder := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/agents/echo", api.ExecuteAgentRequest{
		Query: "what are fractions",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, recorder.queries, 1)
	assert.Equal(t, "what are fractions", recorder.queries[0])
	assert.Equal(t, "echo: what are fractions", recorder.responses[0])
}

func TestHistoryAnswerNotReRecorded(t *testing.T) {
	srv, _, _, recorder := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/agents/recall", api.ExecuteAgentRequest{
		Query: "what are fractions",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, recorder.queries)
}
