// Package platform assembles the full system from configuration: stores,
// embedder, LLM provider, tools, agents, and sessions.
package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/internal/embeddings"
	"github.com/VarunStarz/sahayak-edu-local/internal/flow"
	"github.com/VarunStarz/sahayak-edu-local/internal/indexer"
	"github.com/VarunStarz/sahayak-edu-local/internal/mcp"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents/analytics"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents/curriculum"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents/history"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents/planning"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents/response"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents/router"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	"github.com/VarunStarz/sahayak-edu-local/llm/services/sessions"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools/calendar"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools/progresschart"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools/retriever"
)

// Platform holds all wired components.
type Platform struct {
	Config    *config.PlatformConfig
	Logger    zerolog.Logger
	Store     store.DataStore
	Vectors   vectorstore.VectorStore
	Embedder  embeddings.Embedder
	LLM       shared.LLMProvider
	Providers *providers.Registry
	Tools     *tools.Registry
	Agents    *agents.Registry
	Sessions  *sessions.Service
	History   *history.History
	MCP       *mcp.Manager

	// historyVectors indexes answered interactions, separate from the
	// curriculum collection so recall never surfaces curriculum chunks.
	historyVectors vectorstore.VectorStore
}

// New wires the platform from configuration. MCP servers that fail to
// connect are logged and skipped.
func New(ctx context.Context, cfg *config.PlatformConfig) (*Platform, error) {
	logger := NewLogger(cfg)

	dataStore, err := store.New(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create data store: %w", err)
	}

	vectors, err := vectorstore.New(&cfg.VectorStore)
	if err != nil {
		dataStore.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	historyCfg := cfg.VectorStore
	historyCfg.Collection = cfg.VectorStore.Collection + "_history"
	historyVectors, err := vectorstore.New(&historyCfg)
	if err != nil {
		dataStore.Close()
		vectors.Close()
		return nil, fmt.Errorf("failed to create history vector store: %w", err)
	}
	if err := historyVectors.EnsureCollection(ctx); err != nil {
		dataStore.Close()
		vectors.Close()
		historyVectors.Close()
		return nil, fmt.Errorf("failed to prepare history collection: %w", err)
	}

	embedder, err := embeddings.New(&cfg.Embeddings)
	if err != nil {
		dataStore.Close()
		vectors.Close()
		historyVectors.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	providerRegistry, err := providers.NewRegistryFromConfig(&cfg.LLM)
	if err != nil {
		dataStore.Close()
		vectors.Close()
		historyVectors.Close()
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	provider, err := providerRegistry.GetProvider(cfg.LLM.Provider)
	if err != nil {
		dataStore.Close()
		vectors.Close()
		historyVectors.Close()
		return nil, fmt.Errorf("failed to resolve LLM provider: %w", err)
	}

	toolRegistry := tools.NewRegistry()
	toolRegistry.Register(retriever.NewRetriever(embedder, vectors))
	toolRegistry.Register(progresschart.NewProgressChart(dataStore, cfg.Analytics.ChartOutputDir))

	if cfg.Calendar.Enabled {
		calendarTool, err := calendar.NewCalendar(ctx, &cfg.Calendar)
		if err != nil {
			logger.Warn().Err(err).Msg("calendar tool unavailable")
		} else {
			toolRegistry.Register(calendarTool)
		}
	}

	mcpManager := mcp.NewManager(&cfg.MCP, toolRegistry, logger)
	if len(cfg.MCP.Servers) > 0 {
		if err := mcpManager.Connect(ctx); err != nil {
			logger.Warn().Err(err).Msg("MCP connection failed")
		}
	}

	retry := flow.RetryPolicy{
		MaxRetries:    cfg.Flow.MaxRetries,
		RetryDelay:    cfg.Flow.RetryDelayDuration(),
		BackoffFactor: cfg.Flow.BackoffFactor,
	}

	historyAgent := history.NewHistory(embedder, historyVectors, history.DefaultSimilarityThreshold)

	agentRegistry := agents.NewRegistry(provider)
	agentRegistry.Register(router.NewRouter(agentRegistry, cfg.LLM.Model))
	agentRegistry.Register(response.NewResponder(embedder, vectors, cfg.LLM.Model, retry))
	agentRegistry.Register(historyAgent)
	agentRegistry.Register(analytics.NewAnalytics(dataStore, toolRegistry, cfg.LLM.Model))
	agentRegistry.Register(curriculum.NewCurriculum(dataStore, cfg.LLM.Model))
	agentRegistry.Register(planning.NewPlanner(dataStore, toolRegistry, cfg.LLM.Model))

	return &Platform{
		Config:    cfg,
		Logger:    logger,
		Store:     dataStore,
		Vectors:   vectors,
		Embedder:  embedder,
		LLM:       provider,
		Providers: providerRegistry,
		Tools:     toolRegistry,
		Agents:    agentRegistry,
		Sessions:  sessions.NewService(nil, dataStore),
		History:   historyAgent,
		MCP:       mcpManager,

		historyVectors: historyVectors,
	}, nil
}

// NewIndexer creates a content indexer from the wired components.
func (p *Platform) NewIndexer() (*indexer.Indexer, error) {
	return indexer.New(p.Config, p.Embedder, p.Vectors, p.Logger)
}

// Close releases all held resources.
func (p *Platform) Close() error {
	var firstErr error
	if p.MCP != nil {
		if err := p.MCP.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.Vectors != nil {
		if err := p.Vectors.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.historyVectors != nil {
		if err := p.historyVectors.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.Store != nil {
		if err := p.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewLogger builds the platform logger from configuration. Development mode
// uses the console writer; a log file is appended to when configured.
func NewLogger(cfg *config.PlatformConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			out = zerolog.MultiLevelWriter(out, file)
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
