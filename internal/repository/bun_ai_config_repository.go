package repository

import (
	"context"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunAIConfigRepository implements AIConfigRepository using Bun ORM
type BunAIConfigRepository struct {
	db *bun.DB
}

// NewBunAIConfigRepository creates a new Bun-based AI configuration repository
func NewBunAIConfigRepository(db *bun.DB) *BunAIConfigRepository {
	return &BunAIConfigRepository{db: db}
}

// Create inserts a new configuration
func (r *BunAIConfigRepository) Create(ctx context.Context, cfg *models.AIConfig) error {
	if cfg.ID == "" {
		cfg.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(cfg).Exec(ctx); err != nil {
		return writeErr("create ai config", err)
	}
	return nil
}

// GetByID retrieves a configuration by ID
func (r *BunAIConfigRepository) GetByID(ctx context.Context, id string) (*models.AIConfig, error) {
	cfg := new(models.AIConfig)
	err := r.db.NewSelect().
		Model(cfg).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get ai config", err)
	}
	return cfg, nil
}

// Update persists a configuration
func (r *BunAIConfigRepository) Update(ctx context.Context, cfg *models.AIConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(cfg).
		WherePK().
		Exec(ctx)
	if err != nil {
		return writeErr("update ai config", err)
	}
	return mustAffect("update ai config", res)
}

// List returns every configuration by descending priority
func (r *BunAIConfigRepository) List(ctx context.Context) ([]models.AIConfig, error) {
	cfgs := make([]models.AIConfig, 0)
	err := r.db.NewSelect().
		Model(&cfgs).
		Order("priority DESC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, readErr("list ai configs", err)
	}
	return cfgs, nil
}

// GetActive returns the highest priority active configuration
func (r *BunAIConfigRepository) GetActive(ctx context.Context) (*models.AIConfig, error) {
	cfg := new(models.AIConfig)
	err := r.db.NewSelect().
		Model(cfg).
		Where("is_active = ?", true).
		Order("priority DESC", "created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get active ai config", err)
	}
	return cfg, nil
}
