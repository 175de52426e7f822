// Package http serves the chat page and the per-session websocket endpoint.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/usecases"
)

//go:embed static/index.html
var staticFS embed.FS

// maxFrameSize bounds a single client frame. Loaded sessions can be large.
const maxFrameSize = 4 << 20

// Server is the HTTP server for the chat UI and websocket API.
type Server struct {
	registry *usecases.SessionRegistry
	upgrader websocket.Upgrader
	addr     string
	logger   *zap.Logger

	mu    sync.Mutex
	conns map[string]int // live connections per session id
}

// NewServer creates a server backed by registry.
func NewServer(registry *usecases.SessionRegistry, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		addr:   addr,
		logger: logger,
		conns:  make(map[string]int),
	}
}

// acquire records a live connection on sessionID.
func (s *Server) acquire(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[sessionID]++
}

// release drops a connection and evicts the session once none remain.
// Eviction runs under mu so it cannot interleave with acquire.
func (s *Server) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[sessionID]--
	if s.conns[sessionID] > 0 {
		return
	}
	delete(s.conns, sessionID)
	s.registry.Evict(sessionID)
}

// connections reports the live connection count for sessionID.
func (s *Server) connections(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[sessionID]
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/api/health", s.handleHealth)
	r.Get("/ws/{sessionID}", s.handleWebsocket)
	return r
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	s.logger.Info("coderag server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}
