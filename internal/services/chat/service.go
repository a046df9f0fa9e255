// Package chat stores conversation history grouped into sessions.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/telemetry"
)

const tracerName = "focusapi/services/chat"

// Listing bounds.
const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
	DefaultSessionLimit = 20
	MaxSessionLimit     = 100
)

// Export formats.
const (
	FormatJSON = "json"
	FormatText = "txt"
)

var validRoles = map[string]bool{
	models.ChatRoleUser: true, models.ChatRoleAssistant: true, models.ChatRoleSystem: true,
}

// CreateInput describes a new message. A session id is generated when absent.
type CreateInput struct {
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"message_metadata"`
}

// Export is a rendered download of chat history.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Service manages chat history.
type Service struct {
	chats repository.ChatRepository
	now   func() time.Time
}

// NewService creates a chat service.
func NewService(chats repository.ChatRepository) *Service {
	return &Service{chats: chats, now: time.Now}
}

// WithClock overrides the clock used for export file names.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create stores a message.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.ChatMessage, error) {
	if !validRoles[in.Role] {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid role: %s", in.Role))
	}
	if in.Content == "" {
		return nil, apperr.Malformed("Content is required")
	}
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "chat.Create",
		attribute.String(telemetry.AttrUserID, userID),
		attribute.String(telemetry.AttrSessionID, sessionID),
	)
	defer span.End()

	msg := &models.ChatMessage{
		UserID:    userID,
		SessionID: sessionID,
		Role:      in.Role,
		Content:   in.Content,
		Metadata:  models.JSONMap(in.Metadata),
	}
	if err := s.chats.Create(ctx, msg); err != nil {
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to create message", err)
	}
	return msg, nil
}

// Messages returns messages oldest first, optionally restricted to one session.
func (s *Service) Messages(ctx context.Context, userID, sessionID string, page repository.Page) ([]models.ChatMessage, error) {
	page, err := bound(page, DefaultMessageLimit, MaxMessageLimit)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.List(ctx, userID, sessionID, page)
	if err != nil {
		return nil, apperr.Internal("Failed to get messages", err)
	}
	return msgs, nil
}

// Sessions returns per-session summaries, most recently active first.
func (s *Service) Sessions(ctx context.Context, userID string, page repository.Page) ([]models.ChatSession, error) {
	page, err := bound(page, DefaultSessionLimit, MaxSessionLimit)
	if err != nil {
		return nil, err
	}
	sessions, err := s.chats.Sessions(ctx, userID, page)
	if err != nil {
		return nil, apperr.Internal("Failed to get sessions", err)
	}
	return sessions, nil
}

// DeleteSession removes a session and returns the number of deleted messages.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) (int, error) {
	n, err := s.chats.DeleteSession(ctx, userID, sessionID)
	if err != nil {
		return 0, apperr.Internal("Failed to delete session", err)
	}
	return n, nil
}

// DeleteMessage removes a single message owned by userID.
func (s *Service) DeleteMessage(ctx context.Context, userID, id string) error {
	if err := s.chats.DeleteMessage(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Message not found")
		}
		return apperr.Internal("Failed to delete message", err)
	}
	return nil
}

// Stats aggregates the user's chat history.
func (s *Service) Stats(ctx context.Context, userID string) (repository.ChatStats, error) {
	stats, err := s.chats.Stats(ctx, userID)
	if err != nil {
		return repository.ChatStats{}, apperr.Internal("Failed to get chat stats", err)
	}
	return stats, nil
}

type exportedMessage struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  models.JSONMap `json:"message_metadata"`
	CreatedAt string         `json:"created_at"`
}

// Export renders the user's history, or one session of it, as JSON or plain text.
func (s *Service) Export(ctx context.Context, userID, sessionID, format string) (*Export, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatText {
		return nil, apperr.Malformed("format must be json or txt")
	}

	msgs, err := s.chats.List(ctx, userID, sessionID, repository.Page{})
	if err != nil {
		return nil, apperr.Internal("Failed to export chat history", err)
	}
	stamp := s.now().Format("20060102_150405")

	if format == FormatText {
		lines := make([]string, 0, len(msgs))
		for _, m := range msgs {
			lines = append(lines, fmt.Sprintf("[%s] %s: %s\n",
				m.CreatedAt.Format(time.DateTime), strings.ToUpper(m.Role), m.Content))
		}
		return &Export{
			Filename:    "chat_history_" + stamp + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(strings.Join(lines, "\n")),
		}, nil
	}

	out := make([]exportedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, exportedMessage{
			ID:        m.ID,
			SessionID: m.SessionID,
			Role:      m.Role,
			Content:   m.Content,
			Metadata:  m.Metadata,
			CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, apperr.Internal("Failed to export chat history", err)
	}
	return &Export{
		Filename:    "chat_history_" + stamp + ".json",
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func bound(page repository.Page, def, max int) (repository.Page, error) {
	if page.Skip < 0 {
		return page, apperr.Malformed("skip must be non-negative")
	}
	switch {
	case page.Limit == 0:
		page.Limit = def
	case page.Limit < 0 || page.Limit > max:
		return page, apperr.Malformed(fmt.Sprintf("limit must be between 1 and %d", max))
	}
	return page, nil
}
