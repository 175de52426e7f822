package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("codebase_path: ./src\nmodel_name: llama3.2\n"))
	require.NoError(t, err)

	assert.Equal(t, "./src", cfg.CodebasePath)
	assert.Equal(t, "llama3.2", cfg.ModelName)
	assert.Equal(t, 3, cfg.KDocs)
	assert.Equal(t, "No project description provided.", cfg.ProjectDescription)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.6, *cfg.Temperature, 1e-9)
	assert.Equal(t, 10, cfg.MaxHistory)
	assert.Equal(t, VectorStoreMemory, cfg.VectorStore)
	assert.Equal(t, "TAVILY_API_KEY", cfg.Tavily.APIKeyEnv)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce())
}

func TestParse_PersistDirectorySelectsSQLite(t *testing.T) {
	cfg, err := Parse([]byte("codebase_path: .\npersist_directory: ./db\n"))
	require.NoError(t, err)
	assert.Equal(t, VectorStoreSQLite, cfg.VectorStore)
}

func TestParse_Overrides(t *testing.T) {
	data := []byte(`
codebase_path: /repo
k_docs: 5
project_description: A parser toolkit.
vector_store: memory
watch: true
ollama:
  base_url: http://gpu:11434
tavily:
  max_results: 2
server:
  addr: 127.0.0.1:9000
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.KDocs)
	assert.Equal(t, "A parser toolkit.", cfg.ProjectDescription)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "http://gpu:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.EmbeddingModel)
	assert.Equal(t, 2, cfg.Tavily.MaxResults)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte("model_name: x\n"))
	assert.True(t, errors.Is(err, ErrMissingCodebasePath))

	_, err = Parse([]byte("codebase_path: .\nk_docs: -1\n"))
	assert.True(t, errors.Is(err, ErrInvalidKDocs))

	_, err = Parse([]byte("codebase_path: .\ntemperature: -0.1\n"))
	assert.True(t, errors.Is(err, ErrInvalidTemperature))

	_, err = Parse([]byte("codebase_path: .\nvector_store: chroma\n"))
	assert.ErrorContains(t, err, "chroma")

	_, err = Parse([]byte("codebase_path: [unclosed\n"))
	assert.Error(t, err)
}

func TestParse_ZeroTemperatureIsKept(t *testing.T) {
	cfg, err := Parse([]byte("codebase_path: .\ntemperature: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Temperature)
	assert.Zero(t, *cfg.Temperature)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codebase_path: ./code\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./code", cfg.CodebasePath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTavilyAPIKeyFromEnv(t *testing.T) {
	t.Setenv("CUSTOM_TAVILY", "k-123")
	cfg, err := Parse([]byte("codebase_path: .\ntavily:\n  api_key_env: CUSTOM_TAVILY\n"))
	require.NoError(t, err)
	assert.Equal(t, "k-123", cfg.Tavily.APIKey())
}
