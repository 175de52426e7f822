package usecases

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// SessionFactory builds a new session for id.
type SessionFactory func(ctx context.Context, id string) (*ChatSession, error)

// SessionRegistry holds the live sessions of a serving process.
// Sessions are created on first use and removed only by Evict.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession
	factory  SessionFactory
	logger   *zap.Logger
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(factory SessionFactory, logger *zap.Logger) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		sessions: make(map[string]*ChatSession),
		factory:  factory,
		logger:   logger,
	}
}

// GetOrCreate returns the session for id, creating it if absent.
// created reports whether this call built it.
func (r *SessionRegistry) GetOrCreate(ctx context.Context, id string) (session *ChatSession, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, false, nil
	}

	s, err := r.factory(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("creating session %s: %w", id, err)
	}
	r.sessions[id] = s
	r.logger.Info("session created", zap.String("session", id), zap.Int("live", len(r.sessions)))
	return s, true, nil
}

// Get returns the session for id if it is live.
func (r *SessionRegistry) Get(id string) (*ChatSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Evict removes the session for id. It reports whether one was removed.
func (r *SessionRegistry) Evict(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	r.logger.Info("session evicted", zap.String("session", id), zap.Int("live", len(r.sessions)))
	return true
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// IDs returns the live session ids, sorted.
func (r *SessionRegistry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
