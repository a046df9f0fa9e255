package admin

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/migrations"
	"github.com/focusflow/focusapi/internal/repository"
)

type fixture struct {
	svc      *Service
	users    *repository.BunUserRepository
	tasks    *repository.BunTaskRepository
	insights *repository.BunInsightRepository
}

func setup(t *testing.T, now time.Time) *fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := bunx.NewDB(fmt.Sprintf("file:admin_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)

	f := &fixture{
		users:    repository.NewBunUserRepository(db),
		tasks:    repository.NewBunTaskRepository(db),
		insights: repository.NewBunInsightRepository(db),
	}
	f.svc = NewService(f.users, f.tasks, f.insights).WithClock(func() time.Time { return now })
	return f
}

func (f *fixture) user(t *testing.T, email, tier string) *models.User {
	t.Helper()
	u := &models.User{
		Email: email, PasswordHash: "x", Timezone: models.DefaultTimezone, Language: models.DefaultLanguage,
		SubscriptionTier: tier, Role: models.RoleUser,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) task(t *testing.T, userID, status string, created time.Time) {
	t.Helper()
	require.NoError(t, f.tasks.Create(context.Background(), &models.Task{
		UserID: userID, Title: "t", Priority: models.PriorityMedium, Status: status, CreatedAt: created,
	}))
}

func TestService_Stats(t *testing.T) {
	now := time.Now().UTC()
	f := setup(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com", models.TierFree)
	bob := f.user(t, "bob@example.com", models.TierPremium)
	carol := f.user(t, "carol@example.com", models.TierPro)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	f.task(t, alice.ID, models.TaskStatusCompleted, now)
	f.task(t, alice.ID, models.TaskStatusPending, now)
	f.task(t, bob.ID, models.TaskStatusPending, now)
	f.task(t, carol.ID, models.TaskStatusCompleted, midnight.Add(-time.Minute))

	require.NoError(t, f.insights.Create(ctx, &models.Insight{
		UserID: alice.ID, Type: "pattern", Title: "t", Description: "d", Priority: models.PriorityLow,
	}))

	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalUsers:       3,
		ActiveUsersToday: 2,
		TotalTasks:       4,
		CompletedTasks:   2,
		TotalInsights:    1,
		PremiumUsers:     1,
		ProUsers:         1,
	}, *st)
}

func TestService_User(t *testing.T) {
	now := time.Now().UTC()
	f := setup(t, now)
	ctx := context.Background()

	dave := f.user(t, "dave@example.com", models.TierFree)
	f.task(t, dave.ID, models.TaskStatusCompleted, now)
	f.task(t, dave.ID, models.TaskStatusPending, now)

	detail, err := f.svc.User(ctx, dave.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave@example.com", detail.User.Email)
	assert.Equal(t, UserTaskStats{TotalTasks: 2, CompletedTasks: 1}, detail.Stats)

	_, err = f.svc.User(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	users, err := f.svc.Users(ctx, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
