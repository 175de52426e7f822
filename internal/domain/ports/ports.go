// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"
	"errors"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// EmbeddingService maps text to a fixed-size vector.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMService generates text from a prompt. Calls are synchronous.
type LLMService interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// WebSearcher queries an external web search provider.
type WebSearcher interface {
	// Search returns results in provider rank order.
	Search(ctx context.Context, query string) ([]entities.SearchResult, error)
}

// VectorStore persists embedded summaries and answers similarity queries.
type VectorStore interface {
	// Store appends entries. Existing entries are never replaced.
	Store(ctx context.Context, entries []entities.IndexEntry) error

	// Search returns up to topK documents by descending cosine similarity.
	// Equal scores keep insertion order.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredDocument, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// SourceLoader discovers and reads files from a codebase tree.
type SourceLoader interface {
	// Scan lists supported files under root.
	Scan(ctx context.Context, root string) ([]entities.SourceFile, error)

	// Read returns the verbatim content of a file.
	Read(ctx context.Context, file entities.SourceFile) (string, error)
}

// Summarizer turns raw file content into an indexable summary.
// There is one implementation per FileType.
type Summarizer interface {
	Summarize(file entities.SourceFile, raw string) (string, error)
}

// DocumentRetriever finds summaries similar to a free-text query.
type DocumentRetriever interface {
	Search(ctx context.Context, query string, k int) ([]entities.SummaryDocument, error)
}

// ContentSource resolves file names to their cached verbatim content.
type ContentSource interface {
	FullContent(name string) (string, bool)

	// FileNames lists cached names in first-read order.
	FileNames() []string
}

// ErrSessionNotFound is returned by a SessionStore for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists chat session records.
type SessionStore interface {
	Save(ctx context.Context, record *entities.SessionRecord) error
	Load(ctx context.Context, sessionID string) (*entities.SessionRecord, error)
	List(ctx context.Context) ([]string, error)
}

// FileWatcher monitors a directory tree for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

func (op FileOperation) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	}
	return "unknown"
}
