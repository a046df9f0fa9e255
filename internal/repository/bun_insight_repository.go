package repository

import (
	"context"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunInsightRepository implements InsightRepository using Bun ORM
type BunInsightRepository struct {
	db *bun.DB
}

// NewBunInsightRepository creates a new Bun-based insight repository
func NewBunInsightRepository(db *bun.DB) *BunInsightRepository {
	return &BunInsightRepository{db: db}
}

// Create inserts a new insight
func (r *BunInsightRepository) Create(ctx context.Context, insight *models.Insight) error {
	if insight.ID == "" {
		insight.ID = bunx.NewUUIDv7()
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(insight).Exec(ctx); err != nil {
		return writeErr("create insight", err)
	}
	return nil
}

// GetByID retrieves an insight owned by userID
func (r *BunInsightRepository) GetByID(ctx context.Context, userID, id string) (*models.Insight, error) {
	insight := new(models.Insight)
	err := r.db.NewSelect().
		Model(insight).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get insight", err)
	}
	return insight, nil
}

// Update persists an insight, scoped by its owner
func (r *BunInsightRepository) Update(ctx context.Context, insight *models.Insight) error {
	res, err := r.db.NewUpdate().
		Model(insight).
		WherePK().
		Where("user_id = ?", insight.UserID).
		Exec(ctx)
	if err != nil {
		return writeErr("update insight", err)
	}
	return mustAffect("update insight", res)
}

// List returns a user's insights, newest first
func (r *BunInsightRepository) List(ctx context.Context, userID string, filter InsightFilter) ([]models.Insight, error) {
	insights := make([]models.Insight, 0)
	q := r.db.NewSelect().
		Model(&insights).
		Where("user_id = ?", userID)
	if filter.IsRead != nil {
		q = q.Where("is_read = ?", *filter.IsRead)
	}
	if filter.IsFavorite != nil {
		q = q.Where("is_favorite = ?", *filter.IsFavorite)
	}
	q = q.Order("created_at DESC")

	if err := applyPage(q, filter.Page).Scan(ctx); err != nil {
		return nil, readErr("list insights", err)
	}
	return insights, nil
}

// Count returns the number of insights across all users
func (r *BunInsightRepository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*models.Insight)(nil)).Count(ctx)
	if err != nil {
		return 0, readErr("count insights", err)
	}
	return n, nil
}
