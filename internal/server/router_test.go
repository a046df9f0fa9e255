package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/middleware"
	"github.com/focusflow/focusapi/internal/migrations"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/services/admin"
	"github.com/focusflow/focusapi/internal/services/aiconfig"
	"github.com/focusflow/focusapi/internal/services/authn"
	"github.com/focusflow/focusapi/internal/services/chat"
	"github.com/focusflow/focusapi/internal/services/goals"
	"github.com/focusflow/focusapi/internal/services/habits"
	"github.com/focusflow/focusapi/internal/services/insights"
	"github.com/focusflow/focusapi/internal/services/logs"
	"github.com/focusflow/focusapi/internal/services/tasks"
	"github.com/focusflow/focusapi/internal/services/validation"
	"github.com/focusflow/focusapi/internal/telemetry"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	router chi.Router
	users  *repository.BunUserRepository
	hasher *auth.BcryptHasher
	clock  *clock
	logs   *bytes.Buffer
}

type serverOption func(*RouterOptions)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := bunx.NewDB(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)

	clk := &clock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	users := repository.NewBunUserRepository(db)
	taskRepo := repository.NewBunTaskRepository(db)
	insightRepo := repository.NewBunInsightRepository(db)

	hasher := auth.NewBcryptHasher(4)
	codec, err := auth.NewTokenCodec("test-secret", auth.WithClock(clk.Now))
	require.NoError(t, err)
	authorizer, err := auth.NewAuthorizer()
	require.NoError(t, err)
	validator, err := validation.NewValidator(32)
	require.NoError(t, err)
	sealer, err := aiconfig.NewSealer(bytes.Repeat([]byte{7}, aiconfig.KeySize))
	require.NoError(t, err)

	var buf bytes.Buffer
	ro := RouterOptions{
		Logger:     zerolog.New(&buf),
		Version:    "test",
		DB:         db,
		Authn:      authn.NewService(users, hasher, codec).WithTokenTTL(time.Hour).WithClock(clk.Now),
		Authorizer: authorizer,
		Validator:  validator,
		Tasks:      tasks.NewService(taskRepo).WithClock(clk.Now),
		Goals:      goals.NewService(repository.NewBunGoalRepository(db)),
		Habits:     habits.NewService(repository.NewBunHabitRepository(db)).WithClock(clk.Now),
		Insights:   insights.NewService(insightRepo),
		Chat:       chat.NewService(repository.NewBunChatRepository(db)).WithClock(clk.Now),
		Admin:      admin.NewService(users, taskRepo, insightRepo).WithClock(clk.Now),
		AIConfig:   aiconfig.NewService(repository.NewBunAIConfigRepository(db), sealer),
		Logs:       logs.NewService(t.TempDir(), false),
		Metrics:    telemetry.NewMetrics(),
	}
	for _, opt := range opts {
		opt(&ro)
	}

	return &testServer{
		router: NewRouter(ro),
		users:  users,
		hasher: hasher,
		clock:  clk,
		logs:   &buf,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": password, "name": strings.Split(email, "@")[0],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	hash, err := s.hasher.Hash("admin123456")
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), &models.User{
		Email: "admin@admin.com", PasswordHash: hash, Name: "Admin",
		Timezone: models.DefaultTimezone, Language: models.DefaultLanguage,
		SubscriptionTier: models.TierPro, Role: models.RoleAdmin,
	}))
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@admin.com", "password": "admin123456",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_TaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com", "s3cret")

	me := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	profile := decode[ProfileResponse](t, me)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, models.TierFree, profile.SubscriptionTier)
	assert.Equal(t, models.RoleUser, profile.Role)

	created := s.do(t, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Write report", "priority": "high", "tags": []string{"work"},
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	task := decode[models.Task](t, created)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	list := s.do(t, http.MethodGet, "/api/tasks/", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decode[[]models.Task](t, list), 1)

	updated := s.do(t, http.MethodPut, "/api/tasks/"+task.ID, token, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	assert.Equal(t, models.TaskStatusCompleted, decode[models.Task](t, updated).Status)

	deleted := s.do(t, http.MethodDelete, "/api/tasks/"+task.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, deleted.Code)
	assert.Empty(t, deleted.Body.String())

	missing := s.do(t, http.MethodGet, "/api/tasks/"+task.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Task not found", decode[map[string]any](t, missing)["detail"])
}

func TestRouter_TasksAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "pw-alice")
	bob := s.register(t, "bob@example.com", "pw-bob")

	created := s.do(t, http.MethodPost, "/api/tasks", alice, map[string]any{"title": "private"})
	require.Equal(t, http.StatusCreated, created.Code)
	id := decode[models.Task](t, created).ID

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/tasks/"+id, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/tasks/"+id, bob, nil).Code)
	assert.Empty(t, decode[[]models.Task](t, s.do(t, http.MethodGet, "/api/tasks", bob, nil)))
}

func TestRouter_ExpiredTokenIsRejected(t *testing.T) {
	s := newTestServer(t, func(o *RouterOptions) { o.Authn.WithTokenTTL(time.Second) })
	token := s.register(t, "alice@example.com", "s3cret")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)

	s.clock.Advance(2 * time.Second)
	rec := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, authn.MsgInvalidToken, decode[map[string]any](t, rec)["detail"])
}

func TestRouter_MissingTokenIsUnauthorized(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Not authenticated", body["detail"])
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), body["request_id"])
}

func TestRouter_RequestIDOnEveryResponse(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com", "s3cret")

	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, HealthPath, "", http.StatusOK},
		{http.MethodGet, "/api/nowhere", "", http.StatusNotFound},
		{http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/stats", token, http.StatusForbidden},
		{http.MethodGet, "/api/auth/me", token, http.StatusOK},
	}
	seen := map[string]bool{}
	for _, tc := range cases {
		rec := s.do(t, tc.method, tc.path, tc.token, nil)
		assert.Equal(t, tc.want, rec.Code, tc.path)
		id := rec.Header().Get(middleware.RequestIDHeader)
		require.NotEmpty(t, id, tc.path)
		assert.False(t, seen[id], "duplicate request id")
		seen[id] = true
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	s := newTestServer(t)
	userToken := s.register(t, "alice@example.com", "s3cret")
	adminToken := s.admin(t)

	denied := s.do(t, http.MethodGet, "/api/admin/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Equal(t, "Not enough permissions", decode[map[string]any](t, denied)["detail"])

	stats := s.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, stats.Code)
	got := decode[admin.Stats](t, stats)
	assert.Equal(t, 2, got.TotalUsers)
	assert.Equal(t, 1, got.ProUsers)

	users := s.do(t, http.MethodGet, "/api/admin/users?limit=10", adminToken, nil)
	require.Equal(t, http.StatusOK, users.Code)
	assert.Len(t, decode[[]map[string]any](t, users), 2)
	assert.NotContains(t, users.Body.String(), "password")

	// admins keep access to user routes.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/tasks", adminToken, nil).Code)
}

func TestRouter_LoginAcceptsPasswordForm(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@example.com", "s3cret")

	form := url.Values{"username": {"alice@example.com"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[TokenResponse](t, rec)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	bad := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, authn.MsgBadCredentials, decode[map[string]any](t, bad)["detail"])
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@example.com", "s3cret")

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, authn.MsgEmailRegistered, decode[map[string]any](t, rec)["detail"])
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com", "s3cret")

	empty := s.do(t, http.MethodPost, "/api/tasks", token, nil)
	assert.Equal(t, http.StatusBadRequest, empty.Code)
	assert.Equal(t, "Request body is required", decode[map[string]any](t, empty)["detail"])

	invalid := s.do(t, http.MethodPost, "/api/tasks", token, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.Contains(t, decode[map[string]any](t, invalid)["detail"], "validation failed")

	badLimit := s.do(t, http.MethodGet, "/api/tasks?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, badLimit.Code)
}

func TestRouter_UpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com", "s3cret")

	rec := s.do(t, http.MethodPut, "/api/auth/me", token, map[string]any{
		"name": "Alice", "work_mode": "remote",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Message string          `json:"message"`
		User    ProfileResponse `json:"user"`
	}](t, rec)
	assert.Equal(t, "User updated successfully", body.Message)
	assert.Equal(t, "Alice", body.User.Name)
	require.NotNil(t, body.User.WorkMode)
	assert.Equal(t, "remote", *body.User.WorkMode)
}

func TestRouter_ChatExport(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com", "s3cret")

	for _, content := range []string{"hello", "plan my day"} {
		rec := s.do(t, http.MethodPost, "/api/chat/messages", token, map[string]any{
			"session_id": "s1", "role": "user", "content": content,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/chat/export?format=txt&session_id=s1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=chat_history_20260314_090000.txt", rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "USER: plan my day")

	del := s.do(t, http.MethodDelete, "/api/chat/sessions/s1", token, nil)
	require.Equal(t, http.StatusOK, del.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, del)["deleted_messages"])
}

func TestRouter_HabitCheckInWithoutBody(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice@example.com", "s3cret")

	created := s.do(t, http.MethodPost, "/api/habits", token, map[string]any{
		"title": "Read", "frequency": "daily",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	id := decode[models.Habit](t, created).ID

	rec := s.do(t, http.MethodPost, "/api/habits/"+id+"/check-in", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	habit := decode[models.Habit](t, rec)
	assert.Equal(t, models.StringList{"2026-03-14"}, habit.CompletedDates)
}

func TestRouter_RateLimit(t *testing.T) {
	s := newTestServer(t, func(o *RouterOptions) {
		o.RateLimiter = middleware.NewRateLimiter(2, time.Minute,
			middleware.WithLimiterClock(func() time.Time { return time.Unix(1_800_000_020, 0) }))
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/", "", nil).Code)
	}
	limited := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.NotEmpty(t, limited.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, HealthPath, "", nil).Code)
}

func TestRouter_RateLimitIgnoresForwardingHeaders(t *testing.T) {
	limiter := func(o *RouterOptions) {
		o.RateLimiter = middleware.NewRateLimiter(2, time.Minute,
			middleware.WithLimiterClock(func() time.Time { return time.Unix(1_800_000_020, 0) }))
	}
	send := func(s *testServer, i int) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("untrusted", func(t *testing.T) {
		s := newTestServer(t, limiter)
		var codes []int
		for i := 1; i <= 5; i++ {
			codes = append(codes, send(s, i))
		}
		assert.Equal(t, []int{200, 200, 429, 429, 429}, codes)
	})

	t.Run("trusted proxy", func(t *testing.T) {
		s := newTestServer(t, limiter, func(o *RouterOptions) { o.TrustProxy = true })
		for i := 1; i <= 5; i++ {
			assert.Equal(t, http.StatusOK, send(s, i))
		}
	})
}

func TestRouter_RateLimitExemptsHealthWithTrailingSlash(t *testing.T) {
	s := newTestServer(t, func(o *RouterOptions) {
		o.RateLimiter = middleware.NewRateLimiter(1, time.Minute,
			middleware.WithLimiterClock(func() time.Time { return time.Unix(1_800_000_020, 0) }))
	})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodGet, "/", "", nil).Code)
	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodGet, HealthPath+"/", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(middleware.HeaderRateLimitLimit))
	}
}

func TestRouter_TrailingSlashAuthorization(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "alice@example.com", "s3cret")
	admin := s.admin(t)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"profile", "/api/auth/me/", user, http.StatusOK},
		{"tasks", "/api/tasks/", user, http.StatusOK},
		{"chat stats", "/api/chat/stats/", user, http.StatusOK},
		{"admin route as user", "/api/admin/stats/", user, http.StatusForbidden},
		{"admin route as admin", "/api/admin/stats/", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RegisterRejectsInvalidEmail(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["detail"], "$.email")
	assert.NotContains(t, rec.Body.String(), "access_token")
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func TestRouter_HealthReportsDatabaseFailure(t *testing.T) {
	s := newTestServer(t, func(o *RouterOptions) { o.DB = failingPinger{} })

	rec := s.do(t, http.MethodGet, HealthPath, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decode[map[string]any](t, rec)["status"])
}

func TestRouter_ClientErrorIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/logs/error", "", map[string]any{"message": "render failed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Error logged successfully", decode[map[string]any](t, rec)["message"])

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/logs", "", nil).Code)
}
