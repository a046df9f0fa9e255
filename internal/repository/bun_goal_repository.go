package repository

import (
	"context"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunGoalRepository implements GoalRepository using Bun ORM
type BunGoalRepository struct {
	db *bun.DB
}

// NewBunGoalRepository creates a new Bun-based goal repository
func NewBunGoalRepository(db *bun.DB) *BunGoalRepository {
	return &BunGoalRepository{db: db}
}

// Create inserts a new goal
func (r *BunGoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(goal).Exec(ctx); err != nil {
		return writeErr("create goal", err)
	}
	return nil
}

// List returns a user's goals, newest first
func (r *BunGoalRepository) List(ctx context.Context, userID string) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	err := r.db.NewSelect().
		Model(&goals).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, readErr("list goals", err)
	}
	return goals, nil
}
