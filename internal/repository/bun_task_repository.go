package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunTaskRepository implements TaskRepository using Bun ORM
type BunTaskRepository struct {
	db *bun.DB
}

// NewBunTaskRepository creates a new Bun-based task repository
func NewBunTaskRepository(db *bun.DB) *BunTaskRepository {
	return &BunTaskRepository{db: db}
}

func stampTask(task *models.Task, now time.Time) {
	if task.ID == "" {
		task.ID = bunx.NewUUIDv7()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if task.Tags == nil {
		task.Tags = models.StringList{}
	}
}

// Create inserts a new task
func (r *BunTaskRepository) Create(ctx context.Context, task *models.Task) error {
	stampTask(task, time.Now().UTC())
	if _, err := r.db.NewInsert().Model(task).Exec(ctx); err != nil {
		return writeErr("create task", err)
	}
	return nil
}

// CreateBatch inserts all tasks in one transaction; either every task is stored or none is.
func (r *BunTaskRepository) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, task := range tasks {
		stampTask(task, now)
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&tasks).Exec(ctx); err != nil {
			return writeErr("create task batch", err)
		}
		return nil
	})
}

// GetByID retrieves a task owned by userID
func (r *BunTaskRepository) GetByID(ctx context.Context, userID, id string) (*models.Task, error) {
	task := new(models.Task)
	err := r.db.NewSelect().
		Model(task).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get task", err)
	}
	return task, nil
}

// Update persists every column of a task, scoped by its owner
func (r *BunTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(task).
		WherePK().
		Where("user_id = ?", task.UserID).
		Exec(ctx)
	if err != nil {
		return writeErr("update task", err)
	}
	return mustAffect("update task", res)
}

// Delete removes a task owned by userID
func (r *BunTaskRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Task)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return mustAffect("delete task", res)
}

// List returns a user's tasks by start time, newest first, unscheduled tasks last
func (r *BunTaskRepository) List(ctx context.Context, userID string, filter TaskFilter) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	q := r.db.NewSelect().
		Model(&tasks).
		Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	q = q.OrderExpr("(start_time IS NULL) ASC").
		OrderExpr("start_time DESC").
		OrderExpr("created_at DESC")

	if err := applyPage(q, filter.Page).Scan(ctx); err != nil {
		return nil, readErr("list tasks", err)
	}
	return tasks, nil
}

// Count returns the number of tasks matching the filter
func (r *BunTaskRepository) Count(ctx context.Context, filter TaskCountFilter) (int, error) {
	q := r.db.NewSelect().Model((*models.Task)(nil))
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.CreatedSince.IsZero() {
		q = q.Where("created_at >= ?", filter.CreatedSince.UTC())
	}
	n, err := q.Count(ctx)
	if err != nil {
		return 0, readErr("count tasks", err)
	}
	return n, nil
}

// CountActiveOwners returns the number of distinct users that created a task since the given time
func (r *BunTaskRepository) CountActiveOwners(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.NewSelect().
		Model((*models.Task)(nil)).
		ColumnExpr("COUNT(DISTINCT user_id)").
		Where("created_at >= ?", since.UTC()).
		Scan(ctx, &n)
	if err != nil {
		return 0, readErr("count active task owners", err)
	}
	return n, nil
}
