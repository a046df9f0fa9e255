package repository

import (
	"context"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunHabitRepository implements HabitRepository using Bun ORM
type BunHabitRepository struct {
	db *bun.DB
}

// NewBunHabitRepository creates a new Bun-based habit repository
func NewBunHabitRepository(db *bun.DB) *BunHabitRepository {
	return &BunHabitRepository{db: db}
}

// Create inserts a new habit
func (r *BunHabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	if habit.ID == "" {
		habit.ID = bunx.NewUUIDv7()
	}
	if habit.TargetDays == nil {
		habit.TargetDays = models.IntList{}
	}
	if habit.CompletedDates == nil {
		habit.CompletedDates = models.StringList{}
	}
	now := time.Now().UTC()
	habit.CreatedAt = now
	habit.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(habit).Exec(ctx); err != nil {
		return writeErr("create habit", err)
	}
	return nil
}

// GetByID retrieves a habit owned by userID
func (r *BunHabitRepository) GetByID(ctx context.Context, userID, id string) (*models.Habit, error) {
	habit := new(models.Habit)
	err := r.db.NewSelect().
		Model(habit).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get habit", err)
	}
	return habit, nil
}

// Update persists a habit, scoped by its owner
func (r *BunHabitRepository) Update(ctx context.Context, habit *models.Habit) error {
	habit.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(habit).
		WherePK().
		Where("user_id = ?", habit.UserID).
		Exec(ctx)
	if err != nil {
		return writeErr("update habit", err)
	}
	return mustAffect("update habit", res)
}

// List returns a user's habits, oldest first
func (r *BunHabitRepository) List(ctx context.Context, userID string) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	err := r.db.NewSelect().
		Model(&habits).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, readErr("list habits", err)
	}
	return habits, nil
}
