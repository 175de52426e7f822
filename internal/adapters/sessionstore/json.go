// Package sessionstore persists chat sessions as JSON files.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

const (
	DefaultDir = "./chat_history"

	filePrefix = "session_"
	fileSuffix = ".json"
)

// naiveLayouts are accepted for timestamps written without a zone offset.
// They are read as local time. Fractional seconds are optional when parsing.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

// ErrInvalidSessionID is returned for ids that cannot name a file safely.
var ErrInvalidSessionID = errors.New("invalid session id")

// JSONStore implements ports.SessionStore with one file per session.
type JSONStore struct {
	dir    string
	logger *zap.Logger
}

// NewJSONStore creates a store writing under dir. The directory is created on first save.
func NewJSONStore(dir string, logger *zap.Logger) *JSONStore {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONStore{dir: dir, logger: logger}
}

type recordJSON struct {
	SessionID string        `json:"session_id"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	ModelName string        `json:"model_name"`
	Messages  []messageJSON `json:"messages"`
}

type messageJSON struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Save writes session_<id>.json, replacing any earlier save of the same session.
func (s *JSONStore) Save(ctx context.Context, record *entities.SessionRecord) error {
	path, err := s.path(record.SessionID)
	if err != nil {
		return err
	}
	data, err := Encode(record)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	// Write to a temp file first so a crash never leaves a truncated session.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing session: %w", err)
	}

	s.logger.Info("chat history saved", zap.String("path", path), zap.Int("messages", len(record.Messages)))
	return nil
}

// Load reads a saved session. Unknown ids yield ports.ErrSessionNotFound.
func (s *JSONStore) Load(ctx context.Context, sessionID string) (*entities.SessionRecord, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("session %s: %w", sessionID, ports.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	rec, err := DecodeWithLogger(data, s.logger)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if rec.SessionID == "" {
		rec.SessionID = sessionID
	}
	s.logger.Debug("session loaded", zap.String("path", path), zap.Int("messages", len(rec.Messages)))
	return rec, nil
}

// List returns the ids of all saved sessions, sorted.
func (s *JSONStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *JSONStore) path(sessionID string) (string, error) {
	if !validID.MatchString(sessionID) || strings.Contains(sessionID, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.dir, filePrefix+sessionID+fileSuffix), nil
}

// Encode renders a record as indented JSON; timestamps use FormatTimestamp.
func Encode(record *entities.SessionRecord) ([]byte, error) {
	out := recordJSON{
		SessionID: record.SessionID,
		StartTime: FormatTimestamp(record.StartTime),
		EndTime:   FormatTimestamp(record.EndTime),
		ModelName: record.ModelName,
		Messages:  make([]messageJSON, len(record.Messages)),
	}
	for i, m := range record.Messages {
		out.Messages[i] = messageJSON{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: FormatTimestamp(m.Timestamp),
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

// Decode parses a saved session. Only malformed JSON is an error;
// a message with an unknown role or an unreadable timestamp is dropped.
func Decode(data []byte) (*entities.SessionRecord, error) {
	return DecodeWithLogger(data, zap.NewNop())
}

// DecodeWithLogger is Decode, logging every dropped message.
func DecodeWithLogger(data []byte, logger *zap.Logger) (*entities.SessionRecord, error) {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}

	rec := &entities.SessionRecord{
		SessionID: in.SessionID,
		ModelName: in.ModelName,
		Messages:  make([]entities.Message, 0, len(in.Messages)),
	}
	if t, err := ParseTimestamp(in.StartTime); err == nil {
		rec.StartTime = t
	}
	if t, err := ParseTimestamp(in.EndTime); err == nil {
		rec.EndTime = t
	}

	for i, m := range in.Messages {
		role := entities.Role(m.Role)
		if role != entities.RoleUser && role != entities.RoleAssistant {
			logger.Warn("dropping message with unknown role", zap.Int("index", i), zap.String("role", m.Role))
			continue
		}
		ts, err := ParseTimestamp(m.Timestamp)
		if err != nil {
			logger.Warn("dropping message with bad timestamp", zap.Int("index", i), zap.Error(err))
			continue
		}
		rec.Messages = append(rec.Messages, entities.Message{Role: role, Content: m.Content, Timestamp: ts})
	}
	return rec, nil
}

// ParseTimestamp accepts RFC 3339 and zone-less ISO 8601 timestamps.
// Zone-less values are local time and the only ones placed in time.Local,
// so FormatTimestamp can write them back without an offset.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.RFC3339Nano, s, time.UTC); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTimestamp renders t as ISO 8601 with microsecond precision. The
// fraction is omitted when it is zero. Local times are written without an
// offset; any other zone gets a numeric offset.
func FormatTimestamp(t time.Time) string {
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond()/1000 != 0 {
		layout += ".000000"
	}
	if t.Location() != time.Local {
		layout += "-07:00"
	}
	return t.Format(layout)
}
