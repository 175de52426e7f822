package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/adapters/sessionstore"
	"github.com/0xcro3dile/coderag-go/internal/domain/usecases"
)

const helpText = `Available commands:
  /refresh     - Refresh the context with latest changes
  /save        - Save current chat session
  /load        - Load a previous chat session
  /clear       - Clear the conversation
  /debug       - Show debug information
  /toggle_rag  - Toggle between RAG and conversation-only modes`

// conn is one websocket connection bound to a session.
// Frames are handled one at a time in read order.
type conn struct {
	id      string
	ws      *websocket.Conn
	session *usecases.ChatSession
	logger  *zap.Logger
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxFrameSize)

	s.acquire(sessionID)
	defer s.release(sessionID)

	c := &conn{
		id:     uuid.NewString(),
		ws:     ws,
		logger: s.logger.With(zap.String("session", sessionID)),
	}
	c.logger = c.logger.With(zap.String("conn", c.id))

	session, created, err := s.registry.GetOrCreate(r.Context(), sessionID)
	if err != nil {
		c.logger.Error("creating chat session", zap.Error(err))
		c.send(newFrame(FrameError, fmt.Sprintf("Failed to create chat session: %v", err)))
		return
	}
	c.session = session

	content := "Connected to server. Ready to chat!"
	if !created {
		content = fmt.Sprintf("Reconnected to session %s", sessionID)
	}
	hello := newFrame(FrameInit, content)
	hello.RAGEnabled = boolPtr(session.RAGStatus())
	if err := c.send(hello); err != nil {
		return
	}
	c.logger.Info("websocket connected", zap.Bool("new_session", created))

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		// Answers outlive the connection so a disconnect mid-turn still records it.
		if err := c.handleFrame(context.WithoutCancel(r.Context()), data); err != nil {
			c.logger.Warn("websocket write error", zap.Error(err))
			return
		}
	}
}

func (c *conn) send(f Frame) error {
	return c.ws.WriteJSON(f)
}

func (c *conn) handleFrame(ctx context.Context, data []byte) error {
	var in clientFrame
	if err := json.Unmarshal(data, &in); err != nil {
		c.logger.Debug("invalid frame", zap.Error(err))
		return c.send(newFrame(FrameError, "Invalid message format"))
	}

	switch in.Type {
	case "message":
		c.logger.Debug("processing message", zap.Int("chars", len(in.Content)))
		answer := c.session.Answer(ctx, in.Content)
		return c.send(newFrame(FrameResponse, answer))
	case "command":
		return c.handleCommand(ctx, in.Command, in.Data)
	default:
		return c.send(newFrame(FrameError, fmt.Sprintf("Unknown message type: %s", in.Type)))
	}
}

func (c *conn) handleCommand(ctx context.Context, command string, data json.RawMessage) error {
	c.logger.Debug("processing command", zap.String("command", command))

	switch command {
	case "help":
		return c.send(newFrame(FrameSystem, helpText))
	case "refresh":
		if err := c.session.RefreshIndex(ctx); err != nil {
			return c.commandFailed(command, err)
		}
		return c.send(newFrame(FrameSystem, "Context refreshed with latest changes"))
	case "save":
		if err := c.session.Save(ctx); err != nil {
			return c.commandFailed(command, err)
		}
		return c.send(newFrame(FrameSystem, "Session saved successfully"))
	case "load":
		return c.loadSession(data)
	case "debug":
		return c.send(newFrame(FrameSystem, c.session.DebugSnapshot()))
	case "toggle_rag":
		enabled := c.session.ToggleRAG()
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		f := newFrame(FrameRAGStatus, "RAG mode "+state)
		f.Enabled = boolPtr(enabled)
		return c.send(f)
	case "clear":
		c.session.ClearHistory()
		return c.send(newFrame(FrameSystem, "Chat history cleared"))
	default:
		return c.send(newFrame(FrameError, fmt.Sprintf("Unknown command: %s", command)))
	}
}

func (c *conn) commandFailed(command string, err error) error {
	c.logger.Error("command failed", zap.String("command", command), zap.Error(err))
	return c.send(newFrame(FrameError, fmt.Sprintf("Error executing command: %v", err)))
}

// loadSession replaces the history with a client-supplied session record.
func (c *conn) loadSession(data json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return c.send(newFrame(FrameError, "No session data provided"))
	}

	var info SessionInfo
	if err := json.Unmarshal(trimmed, &info); err != nil {
		return c.send(newFrame(FrameError, fmt.Sprintf("Error loading session: %v", err)))
	}
	rec, err := sessionstore.DecodeWithLogger(trimmed, c.logger)
	if err != nil {
		return c.send(newFrame(FrameError, fmt.Sprintf("Error loading session: %v", err)))
	}

	c.session.ReplaceHistory(rec.Messages)
	loaded := messageFrames(c.session.History())
	c.logger.Info("session loaded from client", zap.String("loaded_session", info.SessionID), zap.Int("messages", len(loaded)))

	if err := c.send(newFrame(FrameSystem,
		fmt.Sprintf("Successfully loaded %d messages from session %s", len(loaded), info.SessionID))); err != nil {
		return err
	}
	f := newFrame(FrameSessionLoaded, "")
	f.Messages = loaded
	f.SessionInfo = &info
	return c.send(f)
}
