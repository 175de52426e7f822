package usecases

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// mockEmbedder implements ports.EmbeddingService for testing
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		emb, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = emb
	}
	return result, nil
}

// mockVectorStore implements ports.VectorStore, returning entries in insertion order
type mockVectorStore struct {
	mu      sync.Mutex
	entries []entities.IndexEntry
	clears  int
}

func (m *mockVectorStore) Store(ctx context.Context, entries []entities.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, emb []float32, topK int) ([]entities.ScoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []entities.ScoredDocument
	for i, e := range m.entries {
		if i >= topK {
			break
		}
		results = append(results, entities.ScoredDocument{Document: e.Document, Score: 0.9})
	}
	return results, nil
}

func (m *mockVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *mockVectorStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.clears++
	return nil
}

// mockLoader serves files from memory. Content with a "!unreadable" value fails to read.
type mockLoader struct {
	mu    sync.Mutex
	files map[string]string // name -> content
	reads int
}

func newMockLoader(files map[string]string) *mockLoader {
	return &mockLoader{files: files}
}

func (m *mockLoader) set(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
}

func (m *mockLoader) Scan(ctx context.Context, root string) ([]entities.SourceFile, error) {
	if root == "" {
		return nil, errors.New("no root")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var files []entities.SourceFile
	for name := range m.files {
		ext := name[strings.LastIndex(name, "."):]
		ft, ok := entities.FileTypeForExt(ext)
		if !ok {
			continue
		}
		files = append(files, entities.SourceFile{Path: root + "/" + name, Name: name, Type: ft})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (m *mockLoader) Read(ctx context.Context, file entities.SourceFile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	content := m.files[file.Name]
	if content == "!unreadable" {
		return "", errors.New("permission denied")
	}
	return content, nil
}

// mockSummarizer prefixes content with the file name. Content containing "!broken" fails.
type mockSummarizer struct{}

func (mockSummarizer) Summarize(file entities.SourceFile, raw string) (string, error) {
	if strings.Contains(raw, "!broken") {
		return "", errors.New("cannot summarize")
	}
	return "summary of " + file.Name, nil
}

func mockSummarizers() map[entities.FileType]ports.Summarizer {
	return map[entities.FileType]ports.Summarizer{
		entities.FileTypePython:   mockSummarizer{},
		entities.FileTypeMarkdown: mockSummarizer{},
		entities.FileTypeText:     mockSummarizer{},
	}
}

// mockLLM returns queued responses in order, then the fallback response.
type mockLLM struct {
	mu        sync.Mutex
	responses []string
	response  string
	err       error
	prompts   []string
	temps     []float64
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.temps = append(m.temps, temperature)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) > 0 {
		out := m.responses[0]
		m.responses = m.responses[1:]
		return out, nil
	}
	if m.response != "" {
		return m.response, nil
	}
	return "mocked answer", nil
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockSearcher implements ports.WebSearcher
type mockSearcher struct {
	results []entities.SearchResult
	err     error
	queries []string
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockRetriever implements ports.DocumentRetriever and counts calls
type mockRetriever struct {
	docs  []entities.SummaryDocument
	err   error
	calls int
}

func (m *mockRetriever) Search(ctx context.Context, query string, k int) ([]entities.SummaryDocument, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.docs) {
		return m.docs[:k], nil
	}
	return m.docs, nil
}

// mockSessionStore keeps records in memory
type mockSessionStore struct {
	records map[string]*entities.SessionRecord
	saveErr error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{records: make(map[string]*entities.SessionRecord)}
}

func (m *mockSessionStore) Save(ctx context.Context, record *entities.SessionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[record.SessionID] = record
	return nil
}

func (m *mockSessionStore) Load(ctx context.Context, sessionID string) (*entities.SessionRecord, error) {
	rec, ok := m.records[sessionID]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return rec, nil
}

func (m *mockSessionStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// mockWatcher emits events pushed by the test
type mockWatcher struct {
	events  chan ports.FileEvent
	stopped chan struct{}
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{events: make(chan ports.FileEvent, 16), stopped: make(chan struct{})}
}

func (m *mockWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	return m.events, nil
}

func (m *mockWatcher) Stop() error {
	close(m.stopped)
	return nil
}

func summaryDoc(name string) entities.SummaryDocument {
	return entities.SummaryDocument{
		Text: "summary of " + name,
		Metadata: entities.DocumentMetadata{
			FileName:             name,
			IsSummary:            true,
			FullContentAvailable: true,
		},
	}
}
