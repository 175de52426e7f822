// Package config loads application configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

var (
	// ErrMissingCodebasePath is returned when codebase_path is not set.
	ErrMissingCodebasePath = errors.New("codebase_path is required")
	// ErrInvalidKDocs is returned for a negative k_docs.
	ErrInvalidKDocs = errors.New("k_docs must not be negative")
	// ErrInvalidTemperature is returned for a negative temperature.
	ErrInvalidTemperature = errors.New("temperature must not be negative")
)

// Vector store kinds.
const (
	VectorStoreSQLite = "sqlite"
	VectorStoreMemory = "memory"
)

// OllamaConfig holds the Ollama endpoint and embedding model.
type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// TavilyConfig configures web search.
type TavilyConfig struct {
	APIKeyEnv  string `yaml:"api_key_env"`
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// APIKey reads the key from the configured environment variable.
func (t TavilyConfig) APIKey() string {
	return os.Getenv(t.APIKeyEnv)
}

// ServerConfig configures the websocket server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	CodebasePath       string   `yaml:"codebase_path"`
	PersistDirectory   string   `yaml:"persist_directory"`
	ModelName          string   `yaml:"model_name"`
	KDocs              int      `yaml:"k_docs"`
	ProjectDescription string   `yaml:"project_description"`
	Temperature        *float64 `yaml:"temperature"`
	MaxHistory         int      `yaml:"max_history"`
	HistoryDir         string   `yaml:"history_dir"`
	VectorStore        string   `yaml:"vector_store"`
	SearchCacheSize    int      `yaml:"search_cache_size"`
	EmbeddingCacheSize int      `yaml:"embedding_cache_size"`
	Watch              bool     `yaml:"watch"`
	WatchDebounceMS    int      `yaml:"watch_debounce_ms"`
	LogLevel           string   `yaml:"log_level"`

	Ollama OllamaConfig `yaml:"ollama"`
	Tavily TavilyConfig `yaml:"tavily"`
	Server ServerConfig `yaml:"server"`
}

// WatchDebounce returns the auto-refresh debounce window.
func (c *AppConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Load reads .env (if present) and then the YAML file at path.
// Defaults are applied and the result is validated.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and validates.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required options.
func (c *AppConfig) Validate() error {
	if c.CodebasePath == "" {
		return ErrMissingCodebasePath
	}
	if c.KDocs < 0 {
		return ErrInvalidKDocs
	}
	if c.Temperature != nil && *c.Temperature < 0 {
		return ErrInvalidTemperature
	}
	switch c.VectorStore {
	case VectorStoreSQLite, VectorStoreMemory:
	default:
		return fmt.Errorf("unknown vector_store %q", c.VectorStore)
	}
	return nil
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.KDocs == 0 {
		cfg.KDocs = 3
	}
	if cfg.ProjectDescription == "" {
		cfg.ProjectDescription = "No project description provided."
	}
	if cfg.Temperature == nil {
		t := 0.6
		cfg.Temperature = &t
	}
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = 10
	}
	if cfg.HistoryDir == "" {
		cfg.HistoryDir = "./chat_history"
	}
	if cfg.VectorStore == "" {
		if cfg.PersistDirectory != "" {
			cfg.VectorStore = VectorStoreSQLite
		} else {
			cfg.VectorStore = VectorStoreMemory
		}
	}
	if cfg.SearchCacheSize == 0 {
		cfg.SearchCacheSize = 100
	}
	if cfg.EmbeddingCacheSize == 0 {
		cfg.EmbeddingCacheSize = 256
	}
	if cfg.WatchDebounceMS == 0 {
		cfg.WatchDebounceMS = 500
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.EmbeddingModel == "" {
		cfg.Ollama.EmbeddingModel = "nomic-embed-text"
	}
	if cfg.Tavily.APIKeyEnv == "" {
		cfg.Tavily.APIKeyEnv = "TAVILY_API_KEY"
	}
	if cfg.Tavily.BaseURL == "" {
		cfg.Tavily.BaseURL = "https://api.tavily.com"
	}
	if cfg.Tavily.MaxResults == 0 {
		cfg.Tavily.MaxResults = 5
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
}
