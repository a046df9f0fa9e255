package repository

import (
	"context"
	"testing"
	"time"

	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		user := createTestUser(t, db, "alice@example.com")
		assert.Len(t, user.ID, 36)
		assert.False(t, user.CreatedAt.IsZero())

		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, models.DefaultTimezone, got.Timezone)
		assert.Nil(t, got.LastLoginAt)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := &models.User{
			Email:            "alice@example.com",
			PasswordHash:     "x",
			Timezone:         models.DefaultTimezone,
			Language:         models.DefaultLanguage,
			SubscriptionTier: models.TierFree,
			Role:             models.RoleUser,
		}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("email lookup is case sensitive", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "ALICE@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunUserRepository_GetByID_NotFound(t *testing.T) {
	repo := NewBunUserRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_UpdateAndLastLogin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "bob@example.com")

	user.Name = "Bobby"
	user.Role = models.RoleAdmin
	require.NoError(t, repo.Update(ctx, user))

	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", got.Name)
	assert.True(t, got.IsAdmin())
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))

	err = repo.UpdateLastLogin(ctx, "missing", at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_ListAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "u1@example.com")
	createTestUser(t, db, "u2@example.com")
	premium := createTestUser(t, db, "u3@example.com")
	premium.SubscriptionTier = models.TierPremium
	require.NoError(t, repo.Update(ctx, premium))

	all, err := repo.List(ctx, Page{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := repo.List(ctx, Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	total, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	n, err := repo.Count(ctx, models.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
