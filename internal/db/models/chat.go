package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Chat roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatMessage is one turn of a conversation grouped by SessionID.
type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID    string    `bun:"user_id,notnull,type:varchar(36)" json:"-"`
	SessionID string    `bun:"session_id,notnull,type:varchar(36)" json:"session_id"`
	Role      string    `bun:"role,notnull" json:"role"`
	Content   string    `bun:"content,notnull,type:text" json:"content"`
	Metadata  JSONMap   `bun:"message_metadata,type:text" json:"message_metadata"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// ChatSession summarises the messages sharing a session id.
type ChatSession struct {
	SessionID     string    `bun:"session_id" json:"session_id"`
	MessageCount  int       `bun:"message_count" json:"message_count"`
	FirstMessage  string    `bun:"first_message" json:"first_message"`
	LastMessageAt time.Time `bun:"last_message_at" json:"last_message_at"`
}
