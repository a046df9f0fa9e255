package repository

import (
	"context"
	"errors"
	"time"

	"github.com/focusflow/focusapi/internal/db/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("record already exists")
)

// Page bounds a list query. Limit <= 0 means no limit.
type Page struct {
	Skip  int
	Limit int
}

// UserRepository exposes persistence operations for principals.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches the address exactly, without case folding.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, page Page) ([]models.User, error)
	// Count returns the number of users, restricted to a tier when tier is non-empty.
	Count(ctx context.Context, tier string) (int, error)
}

// TaskFilter narrows task listings. Empty fields are ignored.
type TaskFilter struct {
	Status   string
	Priority string
	Category string
	Page
}

// TaskCountFilter narrows task counts. Empty fields are ignored.
type TaskCountFilter struct {
	UserID       string
	Status       string
	CreatedSince time.Time
}

// TaskRepository exposes persistence operations for tasks.
// Every read and write is scoped by owner.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	CreateBatch(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, userID, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, filter TaskFilter) ([]models.Task, error)
	Count(ctx context.Context, filter TaskCountFilter) (int, error)
	// CountActiveOwners returns the number of distinct users that created a task since the given time.
	CountActiveOwners(ctx context.Context, since time.Time) (int, error)
}

// GoalRepository exposes persistence operations for goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	List(ctx context.Context, userID string) ([]models.Goal, error)
}

// HabitRepository exposes persistence operations for habits.
type HabitRepository interface {
	Create(ctx context.Context, habit *models.Habit) error
	GetByID(ctx context.Context, userID, id string) (*models.Habit, error)
	Update(ctx context.Context, habit *models.Habit) error
	List(ctx context.Context, userID string) ([]models.Habit, error)
}

// InsightFilter narrows insight listings. Nil fields are ignored.
type InsightFilter struct {
	IsRead     *bool
	IsFavorite *bool
	Page
}

// InsightRepository exposes persistence operations for insights.
type InsightRepository interface {
	Create(ctx context.Context, insight *models.Insight) error
	GetByID(ctx context.Context, userID, id string) (*models.Insight, error)
	Update(ctx context.Context, insight *models.Insight) error
	List(ctx context.Context, userID string, filter InsightFilter) ([]models.Insight, error)
	Count(ctx context.Context) (int, error)
}

// ChatStats aggregates a user's chat history.
type ChatStats struct {
	TotalMessages     int `json:"total_messages"`
	TotalSessions     int `json:"total_sessions"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
}

// ChatRepository exposes persistence operations for chat messages.
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	// List returns messages oldest first. An empty sessionID spans all sessions.
	List(ctx context.Context, userID, sessionID string, page Page) ([]models.ChatMessage, error)
	// Sessions returns per-session summaries, most recently active first.
	Sessions(ctx context.Context, userID string, page Page) ([]models.ChatSession, error)
	DeleteSession(ctx context.Context, userID, sessionID string) (int, error)
	DeleteMessage(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (ChatStats, error)
}

// AIConfigRepository exposes persistence operations for AI provider configurations.
type AIConfigRepository interface {
	Create(ctx context.Context, cfg *models.AIConfig) error
	GetByID(ctx context.Context, id string) (*models.AIConfig, error)
	Update(ctx context.Context, cfg *models.AIConfig) error
	// List returns configurations by descending priority.
	List(ctx context.Context) ([]models.AIConfig, error)
	// GetActive returns the highest priority active configuration.
	GetActive(ctx context.Context) (*models.AIConfig, error)
}
