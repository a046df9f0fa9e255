package cmdutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/focusapi/internal/config"
	"github.com/focusflow/focusapi/internal/db/models"
)

func openTestStore(t *testing.T) *StoreBundle {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		DatabaseURL: fmt.Sprintf("file:cmdutil_%s?mode=memory&cache=shared", name),
		Auth:        config.AuthConfig{BcryptCost: 4},
	}
	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestCreateUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, store.Users, store.Hasher, UserSpec{
		Email: "carol@example.com", Name: "Carol", Password: "pw", Tier: models.TierPremium,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.TierPremium, user.SubscriptionTier)
	assert.True(t, store.Hasher.Verify("pw", user.PasswordHash))

	_, err = CreateUser(ctx, store.Users, store.Hasher, UserSpec{Email: "carol@example.com", Password: "other"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUser_RejectsBadInput(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	cases := map[string]UserSpec{
		"missing email": {Password: "pw"},
		"bad email":     {Email: "not-an-email", Password: "pw"},
		"no password":   {Email: "dave@example.com"},
		"bad role":      {Email: "dave@example.com", Password: "pw", Role: "root"},
		"bad tier":      {Email: "dave@example.com", Password: "pw", Tier: "gold"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CreateUser(ctx, store.Users, store.Hasher, in)
			assert.Error(t, err)
		})
	}
}

func TestEnsureAdmin_IsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, created, err := EnsureAdmin(ctx, store.Users, store.Hasher, "admin@admin.com", "admin123456")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.IsAdmin())
	assert.Equal(t, models.TierPro, first.SubscriptionTier)

	second, created, err := EnsureAdmin(ctx, store.Users, store.Hasher, "admin@admin.com", "changed")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, store.Hasher.Verify("admin123456", second.PasswordHash))
}

func TestEnsureAdmin_PromotesExistingUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, store.Users, store.Hasher, UserSpec{Email: "erin@example.com", Password: "pw"})
	require.NoError(t, err)

	user, created, err := EnsureAdmin(ctx, store.Users, store.Hasher, "erin@example.com", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, user.IsAdmin())

	stored, err := store.Users.GetByEmail(ctx, "erin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestReadPassword(t *testing.T) {
	pw, err := ReadPassword(strings.NewReader("ignored\n"), "flag", false)
	require.NoError(t, err)
	assert.Equal(t, "flag", pw)

	pw, err = ReadPassword(strings.NewReader("s3cret\r\nnext\n"), "", true)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
}

