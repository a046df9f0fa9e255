package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Insight is a generated observation about a user's productivity.
type Insight struct {
	bun.BaseModel `bun:"table:insights,alias:i"`

	ID          string    `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID      string    `bun:"user_id,notnull,type:varchar(36)" json:"-"`
	Type        string    `bun:"type,notnull" json:"type"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,notnull,type:text" json:"description"`
	Priority    string    `bun:"priority,notnull" json:"priority"`
	Actionable  bool      `bun:"actionable,notnull" json:"actionable"`
	ActionText  *string   `bun:"action_text" json:"action_text"`
	IsRead      bool      `bun:"is_read,notnull" json:"is_read"`
	IsFavorite  bool      `bun:"is_favorite,notnull" json:"is_favorite"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}
