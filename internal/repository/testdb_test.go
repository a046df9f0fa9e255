package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// setupTestDB opens a private in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := bunx.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *bun.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:            email,
		PasswordHash:     "$2a$04$placeholder",
		Name:             strings.Split(email, "@")[0],
		Timezone:         models.DefaultTimezone,
		Language:         models.DefaultLanguage,
		SubscriptionTier: models.TierFree,
		Role:             models.RoleUser,
	}
	require.NoError(t, NewBunUserRepository(db).Create(context.Background(), user))
	return user
}
