// Package entities contains core business entities.
// These are pure domain objects with no knowledge of storage, models or transport.
package entities

import (
	"strings"
	"time"
)

// FileType tags the kind of source file being summarized.
type FileType string

const (
	FileTypePython   FileType = "python"
	FileTypeMarkdown FileType = "markdown"
	FileTypeText     FileType = "text"
)

// SupportedFileTypes lists the indexed file types in scan order.
var SupportedFileTypes = []FileType{FileTypePython, FileTypeMarkdown, FileTypeText}

// FileTypeForExt maps a file extension (with leading dot) to its FileType.
func FileTypeForExt(ext string) (FileType, bool) {
	switch strings.ToLower(ext) {
	case ".py":
		return FileTypePython, true
	case ".md":
		return FileTypeMarkdown, true
	case ".txt":
		return FileTypeText, true
	}
	return "", false
}

// SourceFile is a file discovered in the codebase tree.
// Files are identified by Name, which is assumed unique within one tree.
type SourceFile struct {
	Path string
	Name string
	Type FileType
}

// DocumentMetadata travels with a summary into the vector index.
type DocumentMetadata struct {
	FileType             FileType
	FileName             string
	FilePath             string
	IsSummary            bool
	FullContentAvailable bool
}

// SummaryDocument is the compact, indexable representation of a SourceFile.
type SummaryDocument struct {
	Text     string
	Metadata DocumentMetadata
}

// IndexEntry is an embedded summary stored in a vector store.
type IndexEntry struct {
	ID        string
	Embedding []float32
	Document  SummaryDocument
}

// ScoredDocument is a similarity search hit.
type ScoredDocument struct {
	Document SummaryDocument
	Score    float64 // Cosine similarity
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a conversation turn. Messages are never mutated after creation.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// SessionRecord is the persisted form of a chat session.
type SessionRecord struct {
	SessionID string
	StartTime time.Time
	EndTime   time.Time
	ModelName string
	Messages  []Message
}
