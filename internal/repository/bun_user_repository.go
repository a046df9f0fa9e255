package repository

import (
	"context"
	"time"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// Create inserts a new user. A duplicate email yields ErrConflict.
func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return writeErr("create user", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *BunUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get user by id", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by exact email match
func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, readErr("get user by email", err)
	}
	return user, nil
}

// Update persists every column of an existing user
func (r *BunUserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	if err != nil {
		return writeErr("update user", err)
	}
	return mustAffect("update user", res)
}

// UpdateLastLogin updates the last_login_at timestamp for a user
func (r *BunUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_login_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return writeErr("update last login", err)
	}
	return mustAffect("update last login", res)
}

// List retrieves users, newest first
func (r *BunUserRepository) List(ctx context.Context, page Page) ([]models.User, error) {
	var users []models.User
	q := r.db.NewSelect().
		Model(&users).
		Order("created_at DESC")
	if err := applyPage(q, page).Scan(ctx); err != nil {
		return nil, readErr("list users", err)
	}
	return users, nil
}

// Count returns the number of users, optionally restricted to one subscription tier
func (r *BunUserRepository) Count(ctx context.Context, tier string) (int, error) {
	q := r.db.NewSelect().Model((*models.User)(nil))
	if tier != "" {
		q = q.Where("subscription_tier = ?", tier)
	}
	n, err := q.Count(ctx)
	if err != nil {
		return 0, readErr("count users", err)
	}
	return n, nil
}
