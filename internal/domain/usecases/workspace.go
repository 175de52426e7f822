package usecases

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// Workspace ties a codebase tree to its summarizer and vector index.
// Sessions share one Workspace; each holds its own conversation.
type Workspace struct {
	root       string
	summarizer *SourceSummarizer
	embedder   ports.EmbeddingService
	store      ports.VectorStore
	logger     *zap.Logger

	buildMu sync.Mutex // serializes Build and Refresh

	mu    sync.RWMutex
	index *VectorIndex
}

// NewWorkspace creates an unbuilt workspace rooted at root.
func NewWorkspace(
	root string,
	summarizer *SourceSummarizer,
	embedder ports.EmbeddingService,
	store ports.VectorStore,
	logger *zap.Logger,
) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		root:       root,
		summarizer: summarizer,
		embedder:   embedder,
		store:      store,
		logger:     logger,
	}
}

// Build summarizes the tree and creates a fresh index.
func (w *Workspace) Build(ctx context.Context) error {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	w.logger.Info("loading documents", zap.String("root", w.root))
	docs, err := w.summarizer.Load(ctx, w.root)
	if err != nil {
		return err
	}

	index, err := w.summarizer.CreateIndex(ctx, docs, w.embedder, w.store)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	w.mu.Lock()
	w.index = index
	w.mu.Unlock()
	w.logger.Info("index built", zap.Int("documents", len(docs)))
	return nil
}

// Refresh re-summarizes the whole tree and appends it to the index.
// It blocks until the tree has been re-embedded.
func (w *Workspace) Refresh(ctx context.Context) (int, error) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	index := w.currentIndex()
	if index == nil {
		return 0, fmt.Errorf("workspace %s has not been built", w.root)
	}
	n, err := w.summarizer.Refresh(ctx, w.root, index)
	if err != nil {
		return 0, fmt.Errorf("refreshing index: %w", err)
	}
	w.logger.Info("index refreshed", zap.Int("documents", n))
	return n, nil
}

// Search implements ports.DocumentRetriever over the current index.
func (w *Workspace) Search(ctx context.Context, query string, k int) ([]entities.SummaryDocument, error) {
	index := w.currentIndex()
	if index == nil {
		return nil, nil
	}
	return index.Search(ctx, query, k)
}

// Summarizer exposes the content cache holder for routing.
func (w *Workspace) Summarizer() *SourceSummarizer { return w.summarizer }

// Root returns the codebase root.
func (w *Workspace) Root() string { return w.root }

// IndexSize returns the number of indexed entries.
func (w *Workspace) IndexSize(ctx context.Context) (int, error) {
	index := w.currentIndex()
	if index == nil {
		return 0, nil
	}
	return index.Len(ctx)
}

func (w *Workspace) currentIndex() *VectorIndex {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.index
}
