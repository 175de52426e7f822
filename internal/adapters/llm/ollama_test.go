package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaLLM_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "Hi", req.Prompt)
		assert.False(t, req.Stream)
		assert.InDelta(t, 0.6, req.Options.Temperature, 1e-9)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "Hello there!",
			"done":     true,
		})
	}))
	defer server.Close()

	adapter := NewOllamaLLMAdapter(server.URL, "test-model", nil)
	resp, err := adapter.Generate(context.Background(), "Hi", 0.6)

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp)
}

func TestOllamaLLM_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"missing\" not found"}`))
	}))
	defer server.Close()

	adapter := NewOllamaLLMAdapter(server.URL, "missing", nil)
	_, err := adapter.Generate(context.Background(), "test", 0.6)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "not found")
}

func TestOllamaLLM_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOllamaLLMAdapter(server.URL, "test", nil).Generate(ctx, "test", 0.6)
	assert.Error(t, err)
}

func TestOllamaLLM_DefaultValues(t *testing.T) {
	adapter := NewOllamaLLMAdapter("", "", nil)
	assert.Equal(t, "http://localhost:11434", adapter.baseURL)
	assert.Equal(t, "llama3.2", adapter.Model())
}
