// Package llm provides the Ollama LLM adapter.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
)

// OllamaLLMAdapter implements ports.LLMService using Ollama API.
type OllamaLLMAdapter struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewOllamaLLMAdapter creates a new Ollama LLM adapter.
func NewOllamaLLMAdapter(baseURL, model string, logger *zap.Logger) *OllamaLLMAdapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaLLMAdapter{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 300 * time.Second, // local models can be slow on large prompts
		},
		logger: logger.With(zap.String("model", model)),
	}
}

// Model returns the configured model name.
func (a *OllamaLLMAdapter) Model() string { return a.model }

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate sends a single non-streaming completion request.
func (a *OllamaLLMAdapter) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:   a.model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: temperature},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	var genResp ollamaGenerateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&genResp)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && genResp.Error != "" {
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, genResp.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}

	a.logger.Debug("generation finished",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(genResp.Response)),
		zap.Duration("took", time.Since(start)),
	)
	return genResp.Response, nil
}
