package http

import (
	"encoding/json"
	"time"

	"github.com/0xcro3dile/coderag-go/internal/adapters/sessionstore"
	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// Server frame types.
const (
	FrameInit          = "init"
	FrameResponse      = "response"
	FrameSystem        = "system"
	FrameError         = "error"
	FrameRAGStatus     = "rag_status"
	FrameSessionLoaded = "session_loaded"
)

// Frame is a server-to-client message.
type Frame struct {
	Type        string         `json:"type"`
	Content     string         `json:"content"`
	Timestamp   string         `json:"timestamp"`
	RAGEnabled  *bool          `json:"rag_enabled,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
	Messages    []MessageFrame `json:"messages,omitempty"`
	SessionInfo *SessionInfo   `json:"session_info,omitempty"`
}

// MessageFrame is a conversation message as echoed to clients.
type MessageFrame struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SessionInfo describes a session record sent by a client for loading.
type SessionInfo struct {
	SessionID string `json:"session_id"`
	StartTime string `json:"start_time"`
	ModelName string `json:"model_name"`
}

// clientFrame is a client-to-server message.
type clientFrame struct {
	Type    string          `json:"type"`
	Content string          `json:"content"`
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
}

var now = time.Now

func newFrame(frameType, content string) Frame {
	return Frame{Type: frameType, Content: content, Timestamp: sessionstore.FormatTimestamp(now())}
}

func messageFrames(msgs []entities.Message) []MessageFrame {
	out := make([]MessageFrame, len(msgs))
	for i, m := range msgs {
		out[i] = MessageFrame{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: sessionstore.FormatTimestamp(m.Timestamp),
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
