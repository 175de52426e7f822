package usecases

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// DefaultMaxMessages bounds the active window when none is configured.
const DefaultMaxMessages = 10

// ConversationContext is an append-only message history.
// Only the trailing maxMessages entries are used for prompting; the full
// history is kept for persistence.
type ConversationContext struct {
	mu          sync.RWMutex
	messages    []entities.Message
	maxMessages int
	now         func() time.Time
	logger      *zap.Logger
}

// NewConversationContext creates an empty history with the given window size.
func NewConversationContext(maxMessages int, logger *zap.Logger) *ConversationContext {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationContext{
		maxMessages: maxMessages,
		now:         time.Now,
		logger:      logger,
	}
}

// AddMessage appends a message. A zero timestamp means now.
// Sequence order, not timestamp, decides what falls in the active window.
func (c *ConversationContext) AddMessage(role entities.Role, content string, timestamp time.Time) {
	if timestamp.IsZero() {
		timestamp = c.now()
	}

	c.mu.Lock()
	c.messages = append(c.messages, entities.Message{Role: role, Content: content, Timestamp: timestamp})
	total := len(c.messages)
	c.mu.Unlock()

	c.logger.Debug("message added",
		zap.String("role", string(role)),
		zap.Int("active", min(total, c.maxMessages)),
		zap.Int("max", c.maxMessages),
		zap.Int("total", total),
	)
}

// ContextString renders the active window as "role: content" lines, oldest first.
func (c *ConversationContext) ContextString() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := len(c.messages) - c.maxMessages
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, len(c.messages)-start)
	for _, msg := range c.messages[start:] {
		lines = append(lines, string(msg.Role)+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// Messages returns a copy of the full history.
func (c *ConversationContext) Messages() []entities.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entities.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of stored messages.
func (c *ConversationContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// MaxMessages returns the active window size.
func (c *ConversationContext) MaxMessages() int {
	return c.maxMessages
}

// Clear drops the whole history.
func (c *ConversationContext) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
