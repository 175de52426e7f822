package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// SessionIDLayout formats the default session id from the start time.
const SessionIDLayout = "20060102_150405"

const debugPreviewChars = 100

// SessionConfig holds per-session settings.
type SessionConfig struct {
	ID          string // defaults to the start time in SessionIDLayout
	ModelName   string
	MaxMessages int
	Router      RouterConfig
}

// ChatSession is one conversation over a shared Workspace.
type ChatSession struct {
	id        string
	startTime time.Time
	modelName string

	workspace *Workspace
	chat      *ConversationContext
	router    *QueryRouter
	store     ports.SessionStore
	logger    *zap.Logger
}

// NewChatSession creates a session with an empty conversation.
func NewChatSession(
	cfg SessionConfig,
	workspace *Workspace,
	llm ports.LLMService,
	searcher ports.WebSearcher,
	store ports.SessionStore,
	logger *zap.Logger,
) *ChatSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	id := cfg.ID
	if id == "" {
		id = start.Format(SessionIDLayout)
	}
	logger = logger.With(zap.String("session", id))

	chat := NewConversationContext(cfg.MaxMessages, logger)
	router := NewQueryRouter(llm, searcher, workspace, workspace.Summarizer(), chat, cfg.Router, logger)

	logger.Debug("chat session initialized")
	return &ChatSession{
		id:        id,
		startTime: start,
		modelName: cfg.ModelName,
		workspace: workspace,
		chat:      chat,
		router:    router,
		store:     store,
		logger:    logger,
	}
}

// ID returns the session id.
func (s *ChatSession) ID() string { return s.id }

// StartTime returns when the session was created.
func (s *ChatSession) StartTime() time.Time { return s.startTime }

// Answer runs one conversational turn.
func (s *ChatSession) Answer(ctx context.Context, question string) string {
	s.logger.Debug("processing question", zap.String("question", truncate(question, 50)))
	answer := s.router.Answer(ctx, question)
	s.logger.Debug("response generated", zap.Int("messages", s.chat.Len()))
	return answer
}

// RefreshIndex re-indexes the codebase tree.
func (s *ChatSession) RefreshIndex(ctx context.Context) error {
	_, err := s.workspace.Refresh(ctx)
	return err
}

// ToggleRAG flips RAG mode and returns the new state.
func (s *ChatSession) ToggleRAG() bool { return s.router.ToggleRAG() }

// RAGStatus reports whether RAG mode is enabled.
func (s *ChatSession) RAGStatus() bool { return s.router.RAGStatus() }

// History returns the full conversation.
func (s *ChatSession) History() []entities.Message { return s.chat.Messages() }

// ClearHistory drops the conversation.
func (s *ChatSession) ClearHistory() { s.chat.Clear() }

// ReplaceHistory swaps the conversation for msgs, keeping their timestamps.
func (s *ChatSession) ReplaceHistory(msgs []entities.Message) {
	s.chat.Clear()
	for _, m := range msgs {
		s.chat.AddMessage(m.Role, m.Content, m.Timestamp)
	}
	s.logger.Debug("history replaced", zap.Int("messages", len(msgs)))
}

// Record snapshots the session for persistence. EndTime is now.
func (s *ChatSession) Record() *entities.SessionRecord {
	return &entities.SessionRecord{
		SessionID: s.id,
		StartTime: s.startTime,
		EndTime:   time.Now(),
		ModelName: s.modelName,
		Messages:  s.chat.Messages(),
	}
}

// Save persists the session through the configured store.
func (s *ChatSession) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no session store configured")
	}
	rec := s.Record()
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("saving session %s: %w", s.id, err)
	}
	s.logger.Info("session saved", zap.Int("messages", len(rec.Messages)))
	return nil
}

// LoadSession replaces the conversation with a previously saved one.
func (s *ChatSession) LoadSession(ctx context.Context, sessionID string) (int, error) {
	if s.store == nil {
		return 0, errors.New("no session store configured")
	}
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	s.ReplaceHistory(rec.Messages)
	return len(rec.Messages), nil
}

// DebugSnapshot renders a human-readable dump of the conversation.
func (s *ChatSession) DebugSnapshot() string {
	msgs := s.chat.Messages()
	mode := "enabled"
	if !s.RAGStatus() {
		mode = "disabled"
	}

	lines := []string{
		"\n=== Chat Context Debug Info ===",
		fmt.Sprintf("Current session ID: %s", s.id),
		fmt.Sprintf("Session start time: %s", s.startTime.Format(time.RFC3339)),
		fmt.Sprintf("Messages in context: %d", len(msgs)),
		fmt.Sprintf("RAG mode: %s", mode),
		"\nMessage Timeline:",
	}
	for i, m := range msgs {
		lines = append(lines, fmt.Sprintf(
			"\n%d. [%s] %s:\n   Content length: %d chars\n   Preview: %s...",
			i+1, m.Timestamp.Format(time.RFC3339Nano), m.Role, len([]rune(m.Content)), truncate(m.Content, debugPreviewChars),
		))
	}
	return strings.Join(lines, "\n")
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
