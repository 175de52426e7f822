package usecases

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

func newTestWorkspace(t *testing.T, files map[string]string) (*Workspace, *mockLoader, *mockVectorStore) {
	t.Helper()
	loader := newMockLoader(files)
	store := &mockVectorStore{}
	ws := NewWorkspace("/repo", NewSourceSummarizer(loader, mockSummarizers(), nil), &mockEmbedder{}, store, nil)
	require.NoError(t, ws.Build(context.Background()))
	return ws, loader, store
}

func TestWorkspace_BuildAndRefresh(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x", "b.md": "y", "c.txt": "z"})

	n, err := ws.IndexSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	refreshed, err := ws.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, refreshed)

	n, err = ws.IndexSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestWorkspace_RefreshBeforeBuild(t *testing.T) {
	ws := NewWorkspace("/repo", NewSourceSummarizer(newMockLoader(map[string]string{}), mockSummarizers(), nil), &mockEmbedder{}, &mockVectorStore{}, nil)

	_, err := ws.Refresh(context.Background())
	assert.Error(t, err)

	docs, err := ws.Search(context.Background(), "q", 3)
	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestChatSession_DefaultID(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	s := NewChatSession(SessionConfig{}, ws, &mockLLM{}, nil, nil, nil)

	assert.Regexp(t, regexp.MustCompile(`^\d{8}_\d{6}$`), s.ID())
	assert.Equal(t, s.StartTime().Format(SessionIDLayout), s.ID())
}

func TestChatSession_AnswerUsesWorkspaceContent(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"calc.py": "def add(a, b):\n    return a + b\n"})
	llm := &mockLLM{response: "add sums two numbers"}
	s := NewChatSession(SessionConfig{ID: "s1"}, ws, llm, nil, nil, nil)

	answer := s.Answer(context.Background(), "what is in calc.py?")

	assert.Equal(t, "add sums two numbers", answer)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "=== calc.py ===\ndef add(a, b):")
	assert.Len(t, s.History(), 2)
}

func TestChatSession_SaveAndLoad(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	store := newMockSessionStore()

	first := NewChatSession(SessionConfig{ID: "first", ModelName: "llama3"}, ws, &mockLLM{response: "pong"}, nil, store, nil)
	first.Answer(context.Background(), "ping")
	require.NoError(t, first.Save(context.Background()))

	rec := store.records["first"]
	require.NotNil(t, rec)
	assert.Equal(t, "llama3", rec.ModelName)
	assert.Len(t, rec.Messages, 2)
	assert.False(t, rec.EndTime.Before(rec.StartTime))

	second := NewChatSession(SessionConfig{ID: "second"}, ws, &mockLLM{}, nil, store, nil)
	n, err := second.LoadSession(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, rec.Messages, second.History())

	_, err = second.LoadSession(context.Background(), "nope")
	assert.True(t, errors.Is(err, ports.ErrSessionNotFound))
}

func TestChatSession_SaveWithoutStore(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	s := NewChatSession(SessionConfig{ID: "s"}, ws, &mockLLM{}, nil, nil, nil)

	assert.Error(t, s.Save(context.Background()))
	_, err := s.LoadSession(context.Background(), "x")
	assert.Error(t, err)
}

func TestChatSession_SaveFailureWrapped(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	store := newMockSessionStore()
	store.saveErr = errors.New("disk full")
	s := NewChatSession(SessionConfig{ID: "s"}, ws, &mockLLM{}, nil, store, nil)

	assert.ErrorContains(t, s.Save(context.Background()), "disk full")
}

func TestChatSession_DebugSnapshot(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	s := NewChatSession(SessionConfig{ID: "dbg"}, ws, &mockLLM{}, nil, nil, nil)
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'é'
	}
	s.ReplaceHistory([]entities.Message{
		{Role: entities.RoleUser, Content: "hi", Timestamp: ts},
		{Role: entities.RoleAssistant, Content: string(long), Timestamp: ts},
	})
	s.ToggleRAG()

	out := s.DebugSnapshot()

	assert.Contains(t, out, "=== Chat Context Debug Info ===")
	assert.Contains(t, out, "Current session ID: dbg")
	assert.Contains(t, out, "Messages in context: 2")
	assert.Contains(t, out, "RAG mode: disabled")
	assert.Contains(t, out, "1. [2024-05-06T07:08:09Z] user:\n   Content length: 2 chars\n   Preview: hi...")
	assert.Contains(t, out, "Content length: 150 chars")
	assert.Contains(t, out, "Preview: "+string(long[:100])+"...")
}

func TestChatSession_ClearHistory(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	s := NewChatSession(SessionConfig{ID: "c"}, ws, &mockLLM{}, nil, nil, nil)
	s.Answer(context.Background(), "hello")
	require.NotEmpty(t, s.History())

	s.ClearHistory()
	assert.Empty(t, s.History())
}

func TestChatSession_RefreshIndex(t *testing.T) {
	ws, loader, _ := newTestWorkspace(t, map[string]string{"a.py": "x"})
	s := NewChatSession(SessionConfig{ID: "r"}, ws, &mockLLM{}, nil, nil, nil)

	loader.set("new.md", "# New")
	require.NoError(t, s.RefreshIndex(context.Background()))

	content, ok := ws.Summarizer().FullContent("new.md")
	assert.True(t, ok)
	assert.Equal(t, "# New", content)
}
