package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpapi "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
)

// Manager launches configured MCP servers over stdio and exposes their
// tools through the platform tool registry.
type Manager struct {
	config   *config.MCPConfig
	registry *tools.Registry
	logger   zerolog.Logger

	mu      sync.Mutex
	clients map[string]*mcpclient.StdioMCPClient
}

// NewManager creates a manager for the configured MCP servers.
func NewManager(cfg *config.MCPConfig, registry *tools.Registry, logger zerolog.Logger) *Manager {
	return &Manager{
		config:   cfg,
		registry: registry,
		logger:   logger,
		clients:  make(map[string]*mcpclient.StdioMCPClient),
	}
}

// Connect starts every configured server, performs the MCP handshake, and
// registers the discovered tools. A server that fails to connect is logged
// and skipped so one bad server does not take the platform down.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.config.Servers) > m.config.MaxConnections {
		return fmt.Errorf("%d MCP servers configured, limit is %d", len(m.config.Servers), m.config.MaxConnections)
	}

	for _, server := range m.config.Servers {
		if _, exists := m.clients[server.Name]; exists {
			continue
		}

		if err := m.connectServer(ctx, server); err != nil {
			m.logger.Error().Err(err).Str("server", server.Name).Msg("failed to connect MCP server")
			continue
		}
		m.logger.Info().Str("server", server.Name).Msg("connected MCP server")
	}

	return nil
}

func (m *Manager) connectServer(ctx context.Context, server config.MCPServerConfig) error {
	client, err := mcpclient.NewStdioMCPClient(server.Command, server.Env, server.Args...)
	if err != nil {
		return fmt.Errorf("failed to start server process: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, m.config.TimeoutDuration())
	defer cancel()

	initReq := mcpapi.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpapi.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpapi.Implementation{
		Name:    "sahayak-edu-local",
		Version: "1.0.0",
	}

	if _, err := client.Initialize(connectCtx, initReq); err != nil {
		client.Close()
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	toolsResp, err := client.ListTools(connectCtx, mcpapi.ListToolsRequest{})
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to list server tools: %w", err)
	}

	for _, remoteTool := range toolsResp.Tools {
		m.registry.Register(newRemoteTool(server.Name, client, remoteTool, m.config.TimeoutDuration()))
	}

	m.clients[server.Name] = client
	return nil
}

// ConnectedServers returns the names of servers with live connections.
func (m *Manager) ConnectedServers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	return names
}

// Close shuts down all server connections.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, client := range m.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close server %s: %w", name, err)
		}
		delete(m.clients, name)
	}
	return firstErr
}
