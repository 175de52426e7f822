package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/adapters/embedding"
	"github.com/0xcro3dile/coderag-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/coderag-go/internal/adapters/llm"
	"github.com/0xcro3dile/coderag-go/internal/adapters/loader"
	"github.com/0xcro3dile/coderag-go/internal/adapters/parser"
	"github.com/0xcro3dile/coderag-go/internal/adapters/sessionstore"
	"github.com/0xcro3dile/coderag-go/internal/adapters/vectordb"
	"github.com/0xcro3dile/coderag-go/internal/adapters/websearch"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
	"github.com/0xcro3dile/coderag-go/internal/domain/usecases"
	"github.com/0xcro3dile/coderag-go/internal/infrastructure/config"
)

// app holds the components shared by every session of one process.
type app struct {
	cfg       *config.AppConfig
	workspace *usecases.Workspace
	llm       *llm.OllamaLLMAdapter
	searcher  ports.WebSearcher
	history   *sessionstore.JSONStore
	logger    *zap.Logger

	closers []func() error
}

func buildApp(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var store ports.VectorStore
	switch cfg.VectorStore {
	case config.VectorStoreSQLite:
		s, err := vectordb.NewSQLiteStore(cfg.PersistDirectory)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	case config.VectorStoreMemory:
		store = vectordb.NewInMemoryStore()
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore)
	}

	embedder, err := embedding.NewCachedEmbedder(
		embedding.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.EmbeddingModel, logger),
		cfg.EmbeddingCacheSize,
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.llm = llm.NewOllamaLLMAdapter(cfg.Ollama.BaseURL, cfg.ModelName, logger)

	tavily, err := websearch.NewTavilySearcher(cfg.Tavily.APIKey(), cfg.Tavily.BaseURL, cfg.Tavily.MaxResults, logger)
	switch {
	case errors.Is(err, websearch.ErrMissingAPIKey):
		logger.Warn("web search disabled", zap.String("env", cfg.Tavily.APIKeyEnv))
	case err != nil:
		a.Close()
		return nil, err
	default:
		cached, err := websearch.NewCachedSearcher(tavily, cfg.SearchCacheSize)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.searcher = cached
	}

	a.history = sessionstore.NewJSONStore(cfg.HistoryDir, logger)

	summarizer := usecases.NewSourceSummarizer(loader.NewFileLoader(), parser.NewSummarizers(), logger)
	a.workspace = usecases.NewWorkspace(cfg.CodebasePath, summarizer, embedder, store, logger)
	if err := a.workspace.Build(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("building index: %w", err)
	}
	return a, nil
}

// newSession is the usecases.SessionFactory for this process.
func (a *app) newSession(ctx context.Context, id string) (*usecases.ChatSession, error) {
	return usecases.NewChatSession(
		usecases.SessionConfig{
			ID:          id,
			ModelName:   a.llm.Model(),
			MaxMessages: a.cfg.MaxHistory,
			Router: usecases.RouterConfig{
				ProjectDescription: a.cfg.ProjectDescription,
				KDocs:              a.cfg.KDocs,
				Temperature:        a.cfg.Temperature,
			},
		},
		a.workspace, a.llm, a.searcher, a.history, a.logger,
	), nil
}

// startWatcher runs auto refresh in the background when enabled.
func (a *app) startWatcher(ctx context.Context) error {
	if !a.cfg.Watch {
		return nil
	}
	watcher, err := filewatcher.NewFSNotifyWatcher(filewatcher.DefaultExtensions, a.logger)
	if err != nil {
		return err
	}
	refresher := usecases.NewAutoRefresher(a.workspace, watcher, a.cfg.WatchDebounce(), a.logger)
	go func() {
		if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("auto refresh stopped", zap.Error(err))
		}
	}()
	return nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("closing", zap.Error(err))
		}
	}
	a.closers = nil
}
