// Package websearch provides web search adapters implementing ports.WebSearcher.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultMaxResults = 5
	searchTimeout     = 30 * time.Second
)

// ErrMissingAPIKey is returned when no Tavily key is configured.
var ErrMissingAPIKey = errors.New("tavily API key not found")

// TavilySearcher queries the Tavily search API.
type TavilySearcher struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

// NewTavilySearcher creates a searcher. An empty apiKey is an error.
func NewTavilySearcher(apiKey, baseURL string, maxResults int, logger *zap.Logger) (*TavilySearcher, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TavilySearcher{
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: searchTimeout},
		logger:     logger,
	}, nil
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search returns Tavily results in rank order.
func (s *TavilySearcher) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	payload, err := json.Marshal(tavilyRequest{APIKey: s.apiKey, Query: query, MaxResults: s.maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	results := make([]entities.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, entities.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	s.logger.Debug("web search", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
