package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// VectorIndex embeds summary documents and serves similarity search over them.
// It only ever appends; there is no delete.
type VectorIndex struct {
	embedder ports.EmbeddingService
	store    ports.VectorStore
}

// NewVectorIndex creates an index over the given store.
func NewVectorIndex(embedder ports.EmbeddingService, store ports.VectorStore) *VectorIndex {
	return &VectorIndex{embedder: embedder, store: store}
}

// Add embeds each document's summary text and appends it to the store.
func (idx *VectorIndex) Add(ctx context.Context, docs []entities.SummaryDocument) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding summaries: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding summaries: got %d vectors for %d documents", len(embeddings), len(docs))
	}

	// Fresh ids on every add: re-adding an unchanged file yields a second entry.
	entries := make([]entities.IndexEntry, len(docs))
	for i, doc := range docs {
		entries[i] = entities.IndexEntry{
			ID:        uuid.NewString(),
			Embedding: embeddings[i],
			Document:  doc,
		}
	}

	if err := idx.store.Store(ctx, entries); err != nil {
		return fmt.Errorf("storing entries: %w", err)
	}
	return nil
}

// Search embeds the query and returns the k most similar summaries.
func (idx *VectorIndex) Search(ctx context.Context, query string, k int) ([]entities.SummaryDocument, error) {
	embedding, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := idx.store.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}

	docs := make([]entities.SummaryDocument, len(hits))
	for i, hit := range hits {
		docs[i] = hit.Document
	}
	return docs, nil
}

// Len returns the number of indexed entries.
func (idx *VectorIndex) Len(ctx context.Context) (int, error) {
	return idx.store.Count(ctx)
}

// reset drops every entry from the backing store.
func (idx *VectorIndex) reset(ctx context.Context) error {
	return idx.store.Clear(ctx)
}
