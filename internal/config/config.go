package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// PlatformConfig contains all configuration for the platform.
type PlatformConfig struct {
	Server      ServerConfig      `json:"server" mapstructure:"server"`
	Store       StoreConfig       `json:"store" mapstructure:"store" validate:"required"`
	VectorStore VectorStoreConfig `json:"vector_store" mapstructure:"vector_store" validate:"required"`
	Embeddings  EmbedderConfig    `json:"embeddings" mapstructure:"embeddings" validate:"required"`
	LLM         LLMConfig         `json:"llm" mapstructure:"llm" validate:"required"`
	Flow        FlowConfig        `json:"flow" mapstructure:"flow"`
	MCP         MCPConfig         `json:"mcp" mapstructure:"mcp"`
	Calendar    CalendarConfig    `json:"calendar" mapstructure:"calendar"`
	Analytics   AnalyticsConfig   `json:"analytics" mapstructure:"analytics"`

	// Ingestion settings
	ChunkSize    int `json:"chunk_size" mapstructure:"chunk_size" validate:"min=100,max=50000"`
	ChunkOverlap int `json:"chunk_overlap" mapstructure:"chunk_overlap" validate:"min=0,max=5000"`
	BatchSize    int `json:"batch_size" mapstructure:"batch_size" validate:"min=1,max=1000"`

	// Logging
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	LogFile  string `json:"log_file" mapstructure:"log_file"`
}

// ServerConfig configures the HTTP agent server.
type ServerConfig struct {
	Address     string `json:"address" mapstructure:"address"`
	Environment string `json:"environment" mapstructure:"environment" validate:"omitempty,oneof=development production"`
}

// StoreConfig configures the relational store.
type StoreConfig struct {
	Driver string `json:"driver" mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	// Path is the database file for the sqlite driver.
	Path string `json:"path,omitempty" mapstructure:"path"`
	// DSN is the connection string for the postgres driver.
	DSN string `json:"dsn,omitempty" mapstructure:"dsn"`
}

// VectorStoreConfig configures the vector database.
type VectorStoreConfig struct {
	Provider   string `json:"provider" mapstructure:"provider" validate:"required,oneof=milvus memory"`
	Host       string `json:"host" mapstructure:"host"`
	Port       int    `json:"port" mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username   string `json:"username" mapstructure:"username"`
	Password   string `json:"password" mapstructure:"password"`
	Collection string `json:"collection" mapstructure:"collection" validate:"required"`
	Dimension  int    `json:"dimension" mapstructure:"dimension" validate:"min=1,max=4096"`
	Recreate   bool   `json:"recreate" mapstructure:"recreate"`
}

// GetURI returns the vector database connection URI.
func (v *VectorStoreConfig) GetURI() string {
	return fmt.Sprintf("http://%s:%d", v.Host, v.Port)
}

// EmbedderConfig configures the embedding model.
type EmbedderConfig struct {
	Provider string `json:"provider" mapstructure:"provider" validate:"required,oneof=ollama openai"`
	Model    string `json:"model" mapstructure:"model" validate:"required"`
	BaseURL  string `json:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	APIKey   string `json:"api_key,omitempty" mapstructure:"api_key"`
	// Dimension is probed from the provider when zero.
	Dimension int `json:"dimension,omitempty" mapstructure:"dimension" validate:"omitempty,min=1,max=4096"`
}

// LLMConfig configures the language model provider.
type LLMConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider" validate:"required,oneof=ollama openai"`
	Model       string  `json:"model" mapstructure:"model" validate:"required"`
	BaseURL     string  `json:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	APIKey      string  `json:"api_key,omitempty" mapstructure:"api_key"`
	Timeout     float64 `json:"timeout" mapstructure:"timeout" validate:"min=1,max=3600"`
	Temperature float32 `json:"temperature" mapstructure:"temperature" validate:"min=0,max=2"`
}

// TimeoutDuration returns the LLM timeout as a duration.
func (l *LLMConfig) TimeoutDuration() time.Duration {
	return time.Duration(l.Timeout * float64(time.Second))
}

// FlowConfig configures node execution retries.
type FlowConfig struct {
	MaxRetries    int     `json:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelay    float64 `json:"retry_delay" mapstructure:"retry_delay" validate:"min=0"`
	BackoffFactor float64 `json:"backoff_factor" mapstructure:"backoff_factor" validate:"min=1"`
}

// RetryDelayDuration returns the initial retry delay as a duration.
func (f *FlowConfig) RetryDelayDuration() time.Duration {
	return time.Duration(f.RetryDelay * float64(time.Second))
}

// MCPConfig configures connections to external tool servers.
type MCPConfig struct {
	Servers        []MCPServerConfig `json:"servers" mapstructure:"servers"`
	Timeout        float64           `json:"timeout" mapstructure:"timeout" validate:"min=1,max=600"`
	MaxConnections int               `json:"max_connections" mapstructure:"max_connections" validate:"min=1,max=100"`
}

// MCPServerConfig describes one external MCP tool server launched over stdio.
type MCPServerConfig struct {
	Name    string   `json:"name" mapstructure:"name" validate:"required"`
	Command string   `json:"command" mapstructure:"command" validate:"required"`
	Args    []string `json:"args" mapstructure:"args"`
	Env     []string `json:"env" mapstructure:"env"`
}

// TimeoutDuration returns the MCP connection timeout as a duration.
func (m *MCPConfig) TimeoutDuration() time.Duration {
	return time.Duration(m.Timeout * float64(time.Second))
}

// CalendarConfig configures the Google Calendar integration.
type CalendarConfig struct {
	Enabled         bool     `json:"enabled" mapstructure:"enabled"`
	CredentialsFile string   `json:"credentials_file" mapstructure:"credentials_file"`
	CalendarID      string   `json:"calendar_id" mapstructure:"calendar_id"`
	Scopes          []string `json:"scopes,omitempty" mapstructure:"scopes"`
}

// AnalyticsConfig configures dashboards and reporting.
type AnalyticsConfig struct {
	DashboardRefresh float64 `json:"dashboard_refresh" mapstructure:"dashboard_refresh" validate:"min=1"`
	ChartOutputDir   string  `json:"chart_output_dir" mapstructure:"chart_output_dir"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *PlatformConfig {
	return &PlatformConfig{
		Server: ServerConfig{
			Address:     ":8080",
			Environment: "development",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "data/platform.db",
		},
		VectorStore: VectorStoreConfig{
			Provider:   "milvus",
			Host:       "localhost",
			Port:       19530,
			Username:   "root",
			Password:   "Milvus",
			Collection: "curriculum",
			Dimension:  384,
			Recreate:   false,
		},
		Embeddings: EmbedderConfig{
			Provider: "ollama",
			Model:    "all-minilm:v2",
			BaseURL:  "http://localhost:11434",
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "gemma3n",
			BaseURL:     "http://localhost:11434",
			Timeout:     30.0,
			Temperature: 0.2,
		},
		Flow: FlowConfig{
			MaxRetries:    3,
			RetryDelay:    1.0,
			BackoffFactor: 2.0,
		},
		MCP: MCPConfig{
			Timeout:        30.0,
			MaxConnections: 10,
		},
		Calendar: CalendarConfig{
			Enabled:         false,
			CredentialsFile: "credentials/google_credentials.json",
			CalendarID:      "primary",
		},
		Analytics: AnalyticsConfig{
			DashboardRefresh: 5.0,
			ChartOutputDir:   "data/dashboards",
		},
		ChunkSize:    1000,
		ChunkOverlap: 200,
		BatchSize:    100,
		LogLevel:     "info",
		LogFile:      "",
	}
}

// LoadConfigFromFile loads configuration from a JSON or YAML file, applying
// defaults for missing fields.
func LoadConfigFromFile(path string) (*PlatformConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PLATFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return config, nil
}

// Validate validates the configuration.
func (c *PlatformConfig) Validate() error {
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite driver")
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}
	if c.VectorStore.Provider == "milvus" && c.VectorStore.Host == "" {
		return fmt.Errorf("vector_store.host is required for the milvus provider")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}

	validate := validator.New()
	return validate.Struct(c)
}

// SaveToFile saves the configuration to a JSON file.
func (c *PlatformConfig) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *PlatformConfig) IsDevelopment() bool {
	return c.Server.Environment != "production"
}

// String returns the configuration as JSON with secrets masked.
func (c *PlatformConfig) String() string {
	configCopy := *c

	if configCopy.VectorStore.Password != "" {
		configCopy.VectorStore.Password = strings.Repeat("*", len(configCopy.VectorStore.Password))
	}
	if configCopy.Embeddings.APIKey != "" {
		configCopy.Embeddings.APIKey = strings.Repeat("*", len(configCopy.Embeddings.APIKey))
	}
	if configCopy.LLM.APIKey != "" {
		configCopy.LLM.APIKey = strings.Repeat("*", len(configCopy.LLM.APIKey))
	}
	if configCopy.Store.DSN != "" {
		configCopy.Store.DSN = strings.Repeat("*", len(configCopy.Store.DSN))
	}

	data, _ := json.MarshalIndent(configCopy, "", "  ")
	return string(data)
}
