// Package vectordb provides vector store adapters implementing ports.VectorStore.
// Both stores search by brute-force cosine similarity.
package vectordb

import (
	"context"
	"sync"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// InMemoryStore keeps entries in a slice for the lifetime of the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []entities.IndexEntry
}

// NewInMemoryStore creates a new in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Store appends entries.
func (s *InMemoryStore) Store(ctx context.Context, entries []entities.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entries...)
	return nil
}

// Search finds the most similar entries to a query embedding.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return rankTopK(embedding, s.entries, topK), nil
}

// Count returns the number of stored entries.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Clear removes all data from the store.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}
