package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// FirstMessagePreviewLen caps the session preview, counted in runes.
const FirstMessagePreviewLen = 100

// BunChatRepository implements ChatRepository using Bun ORM
type BunChatRepository struct {
	db *bun.DB
}

// NewBunChatRepository creates a new Bun-based chat repository
func NewBunChatRepository(db *bun.DB) *BunChatRepository {
	return &BunChatRepository{db: db}
}

// Create inserts a new chat message
func (r *BunChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = bunx.NewUUIDv7()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(msg).Exec(ctx); err != nil {
		return writeErr("create chat message", err)
	}
	return nil
}

// List returns a user's messages oldest first, optionally within one session
func (r *BunChatRepository) List(ctx context.Context, userID, sessionID string, page Page) ([]models.ChatMessage, error) {
	msgs := make([]models.ChatMessage, 0)
	q := r.db.NewSelect().
		Model(&msgs).
		Where("user_id = ?", userID)
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	q = q.Order("created_at ASC", "id ASC")

	if err := applyPage(q, page).Scan(ctx); err != nil {
		return nil, readErr("list chat messages", err)
	}
	return msgs, nil
}

// Sessions returns one summary per session, most recently active first
func (r *BunChatRepository) Sessions(ctx context.Context, userID string, page Page) ([]models.ChatSession, error) {
	sessions := make([]models.ChatSession, 0)
	q := r.db.NewSelect().
		Model((*models.ChatMessage)(nil)).
		Column("session_id").
		ColumnExpr("COUNT(*) AS message_count").
		ColumnExpr("MAX(created_at) AS last_message_at").
		Where("user_id = ?", userID).
		Group("session_id").
		OrderExpr("last_message_at DESC")

	if err := applyPage(q, page).Scan(ctx, &sessions); err != nil {
		return nil, readErr("list chat sessions", err)
	}

	for i := range sessions {
		first, err := r.firstMessage(ctx, userID, sessions[i].SessionID)
		if err != nil {
			return nil, err
		}
		sessions[i].FirstMessage = preview(first)
		sessions[i].LastMessageAt = sessions[i].LastMessageAt.UTC()
	}
	return sessions, nil
}

func (r *BunChatRepository) firstMessage(ctx context.Context, userID, sessionID string) (string, error) {
	var content string
	err := r.db.NewSelect().
		Model((*models.ChatMessage)(nil)).
		Column("content").
		Where("user_id = ?", userID).
		Where("session_id = ?", sessionID).
		Order("created_at ASC", "id ASC").
		Limit(1).
		Scan(ctx, &content)
	if err != nil {
		return "", readErr("get first chat message", err)
	}
	return content, nil
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= FirstMessagePreviewLen {
		return s
	}
	return string(runes[:FirstMessagePreviewLen])
}

// DeleteSession removes every message of a session and returns how many were deleted
func (r *BunChatRepository) DeleteSession(ctx context.Context, userID, sessionID string) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.ChatMessage)(nil)).
		Where("user_id = ?", userID).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete chat session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete chat session: get rows affected: %w", err)
	}
	return int(n), nil
}

// DeleteMessage removes a single message owned by userID
func (r *BunChatRepository) DeleteMessage(ctx context.Context, userID, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.ChatMessage)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}
	return mustAffect("delete chat message", res)
}

// Stats aggregates a user's chat history in a single query
func (r *BunChatRepository) Stats(ctx context.Context, userID string) (ChatStats, error) {
	var stats ChatStats
	err := r.db.NewSelect().
		Model((*models.ChatMessage)(nil)).
		ColumnExpr("COUNT(*)").
		ColumnExpr("COUNT(DISTINCT session_id)").
		ColumnExpr("COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0)", models.ChatRoleUser).
		ColumnExpr("COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0)", models.ChatRoleAssistant).
		Where("user_id = ?", userID).
		Scan(ctx, &stats.TotalMessages, &stats.TotalSessions, &stats.UserMessages, &stats.AssistantMessages)
	if err != nil {
		return ChatStats{}, readErr("chat stats", err)
	}
	return stats, nil
}
