// Package usecases contains application business rules.
// Usecases orchestrate entities and depend only on port interfaces.
package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// SourceSummarizer turns a codebase tree into summary documents for indexing
// and keeps the verbatim content of every file it reads.
type SourceSummarizer struct {
	loader      ports.SourceLoader
	summarizers map[entities.FileType]ports.Summarizer
	cache       *ContentCache
	logger      *zap.Logger
}

// NewSourceSummarizer creates a summarizer dispatching on file type.
func NewSourceSummarizer(
	loader ports.SourceLoader,
	summarizers map[entities.FileType]ports.Summarizer,
	logger *zap.Logger,
) *SourceSummarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceSummarizer{
		loader:      loader,
		summarizers: summarizers,
		cache:       NewContentCache(),
		logger:      logger,
	}
}

// Load scans root and summarizes every supported file.
// A file that cannot be read or summarized is logged and left out;
// only a failed scan of the tree itself is returned as an error.
func (s *SourceSummarizer) Load(ctx context.Context, root string) ([]entities.SummaryDocument, error) {
	files, err := s.loader.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	docs := make([]entities.SummaryDocument, 0, len(files))
	for _, file := range files {
		doc, err := s.summarizeFile(ctx, file)
		if err != nil {
			s.logger.Warn("skipping file", zap.String("path", file.Path), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	s.logger.Debug("loaded documents", zap.String("root", root), zap.Int("files", len(files)), zap.Int("documents", len(docs)))
	return docs, nil
}

func (s *SourceSummarizer) summarizeFile(ctx context.Context, file entities.SourceFile) (entities.SummaryDocument, error) {
	summarizer, ok := s.summarizers[file.Type]
	if !ok {
		return entities.SummaryDocument{}, fmt.Errorf("no summarizer for file type %q", file.Type)
	}

	raw, err := s.loader.Read(ctx, file)
	if err != nil {
		return entities.SummaryDocument{}, fmt.Errorf("reading file: %w", err)
	}
	// Cached before summarizing so the content stays retrievable even if summarizing fails.
	s.cache.Put(file.Name, raw)

	summary, err := summarizer.Summarize(file, raw)
	if err != nil {
		return entities.SummaryDocument{}, fmt.Errorf("summarizing %s file: %w", file.Type, err)
	}

	return entities.SummaryDocument{
		Text: summary,
		Metadata: entities.DocumentMetadata{
			FileType:             file.Type,
			FileName:             file.Name,
			FilePath:             file.Path,
			IsSummary:            true,
			FullContentAvailable: true,
		},
	}, nil
}

// FullContent returns the verbatim content of a previously read file.
func (s *SourceSummarizer) FullContent(name string) (string, bool) {
	return s.cache.FullContent(name)
}

// FileNames lists every file read so far.
func (s *SourceSummarizer) FileNames() []string {
	return s.cache.FileNames()
}

// CreateIndex builds a fresh index over store from docs.
// Anything already in the store is discarded first.
func (s *SourceSummarizer) CreateIndex(
	ctx context.Context,
	docs []entities.SummaryDocument,
	embedder ports.EmbeddingService,
	store ports.VectorStore,
) (*VectorIndex, error) {
	index := NewVectorIndex(embedder, store)
	if err := index.reset(ctx); err != nil {
		return nil, fmt.Errorf("clearing vector store: %w", err)
	}
	if err := index.Add(ctx, docs); err != nil {
		return nil, err
	}
	s.logger.Debug("index created", zap.Int("documents", len(docs)))
	return index, nil
}

// Refresh re-summarizes the whole tree and appends the results to index.
// Nothing is diffed against earlier runs, so unchanged files are indexed again.
func (s *SourceSummarizer) Refresh(ctx context.Context, root string, index *VectorIndex) (int, error) {
	docs, err := s.Load(ctx, root)
	if err != nil {
		return 0, err
	}
	if err := index.Add(ctx, docs); err != nil {
		return 0, err
	}
	s.logger.Debug("index refreshed", zap.String("root", root), zap.Int("documents", len(docs)))
	return len(docs), nil
}
