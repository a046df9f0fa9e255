package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task statuses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task is a schedulable unit of work owned by one user.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          string     `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID      string     `bun:"user_id,notnull,type:varchar(36)" json:"-"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description *string    `bun:"description,type:text" json:"description"`
	StartTime   *time.Time `bun:"start_time" json:"start_time"`
	EndTime     *time.Time `bun:"end_time" json:"end_time"`
	Duration    *int       `bun:"duration" json:"duration"`
	Priority    string     `bun:"priority,notnull" json:"priority"`
	Status      string     `bun:"status,notnull" json:"status"`
	Category    *string    `bun:"category" json:"category"`
	Tags        StringList `bun:"tags,type:text" json:"tags"`
	CompletedAt *time.Time `bun:"completed_at" json:"completed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}
