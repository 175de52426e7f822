package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

const dbFileName = "index.db"

// SQLiteStore implements ports.VectorStore with SQLite-based persistence.
// Rows are read back in rowid order, which is insertion order.
type SQLiteStore struct {
	mu       sync.RWMutex
	db       *sql.DB
	dataPath string
}

// NewSQLiteStore opens (or creates) index.db under dataPath.
func NewSQLiteStore(dataPath string) (*SQLiteStore, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{
		db:       db,
		dataPath: dataPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_type TEXT NOT NULL,
		is_summary INTEGER NOT NULL,
		full_content_available INTEGER NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_entries_file_name ON entries(file_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Store appends entries in one transaction.
func (s *SQLiteStore) Store(ctx context.Context, entries []entities.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, file_name, file_path, file_type, is_summary, full_content_available, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		embeddingJSON, err := json.Marshal(e.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}

		meta := e.Document.Metadata
		_, err = stmt.ExecContext(ctx,
			e.ID,
			meta.FileName,
			meta.FilePath,
			string(meta.FileType),
			meta.IsSummary,
			meta.FullContentAvailable,
			e.Document.Text,
			embeddingJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}
	}

	return tx.Commit()
}

// Search finds the most similar entries to a query embedding.
func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, file_path, file_type, is_summary, full_content_available, text, embedding
		FROM entries
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []entities.IndexEntry
	for rows.Next() {
		var (
			e             entities.IndexEntry
			fileType      string
			embeddingJSON []byte
		)
		meta := &e.Document.Metadata
		err := rows.Scan(&e.ID, &meta.FileName, &meta.FilePath, &fileType,
			&meta.IsSummary, &meta.FullContentAvailable, &e.Document.Text, &embeddingJSON)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		meta.FileType = entities.FileType(fileType)

		if err := json.Unmarshal(embeddingJSON, &e.Embedding); err != nil {
			continue // Skip corrupted embeddings
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}

	return rankTopK(embedding, entries, topK), nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// Clear removes all data from the store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
