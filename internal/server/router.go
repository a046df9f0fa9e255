package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/middleware"
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

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterOptions carries the services mounted by NewRouter.
type RouterOptions struct {
	Logger      zerolog.Logger
	Version     string
	DB          Pinger
	Authn       *authn.Service
	Authorizer  *auth.Authorizer
	Validator   *validation.Validator
	Tasks       *tasks.Service
	Goals       *goals.Service
	Habits      *habits.Service
	Insights    *insights.Service
	Chat        *chat.Service
	Admin       *admin.Service
	AIConfig    *aiconfig.Service
	Logs        *logs.Service
	RateLimiter *middleware.RateLimiter
	Metrics     *telemetry.Metrics
	CORSOptions *cors.Options
	// TrustProxy rewrites RemoteAddr from forwarding headers before any
	// middleware reads the client address.
	TrustProxy bool
}

// Paths that bypass the rate limiter.
const (
	HealthPath  = "/api/health"
	MetricsPath = "/metrics"
)

// DefaultCORSOptions allows the given browser origins to call the API.
func DefaultCORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{
			middleware.RequestIDHeader,
			middleware.HeaderRateLimitLimit,
			middleware.HeaderRateLimitRemaining,
			middleware.HeaderRateLimitReset,
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the middleware chain and every API route.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestContext(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))

	corsCfg := DefaultCORSOptions(nil)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))
	r.Use(chimw.StripSlashes)

	if opts.RateLimiter != nil {
		r.Use(middleware.RateLimit(opts.RateLimiter, opts.Metrics, HealthPath, MetricsPath))
	}

	r.Get("/", HandleRoot(opts.Version))
	r.Get(HealthPath, HandleHealth(opts.DB))
	r.Method(http.MethodGet, MetricsPath, opts.Metrics.Handler())

	r.Post("/api/auth/register", HandleRegister(opts.Authn, opts.Validator))
	r.Post("/api/auth/login", HandleLogin(opts.Authn, opts.Validator))
	r.Post("/api/logs/error", HandleClientError(opts.Logs, opts.Validator))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Authn))
		r.Use(middleware.Authorize(opts.Authorizer))

		r.Get("/api/auth/me", HandleMe())
		r.Put("/api/auth/me", HandleUpdateMe(opts.Authn, opts.Validator))

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", HandleListTasks(opts.Tasks))
			r.Post("/", HandleCreateTask(opts.Tasks, opts.Validator))
			r.Post("/batch", HandleCreateTaskBatch(opts.Tasks, opts.Validator))
			r.Get("/{id}", HandleGetTask(opts.Tasks))
			r.Put("/{id}", HandleUpdateTask(opts.Tasks, opts.Validator))
			r.Delete("/{id}", HandleDeleteTask(opts.Tasks))
		})

		r.Route("/api/goals", func(r chi.Router) {
			r.Get("/", HandleListGoals(opts.Goals))
			r.Post("/", HandleCreateGoal(opts.Goals, opts.Validator))
		})

		r.Route("/api/habits", func(r chi.Router) {
			r.Get("/", HandleListHabits(opts.Habits))
			r.Post("/", HandleCreateHabit(opts.Habits, opts.Validator))
			r.Post("/{id}/check-in", HandleCheckInHabit(opts.Habits, opts.Validator))
		})

		r.Route("/api/insights", func(r chi.Router) {
			r.Get("/", HandleListInsights(opts.Insights))
			r.Post("/", HandleCreateInsight(opts.Insights, opts.Validator))
			r.Put("/{id}/read", HandleMarkInsightRead(opts.Insights))
			r.Put("/{id}/favorite", HandleToggleInsightFavorite(opts.Insights))
		})

		r.Route("/api/chat", func(r chi.Router) {
			r.Post("/messages", HandleCreateChatMessage(opts.Chat, opts.Validator))
			r.Get("/messages", HandleListChatMessages(opts.Chat))
			r.Delete("/messages/{id}", HandleDeleteChatMessage(opts.Chat))
			r.Get("/sessions", HandleListChatSessions(opts.Chat))
			r.Delete("/sessions/{id}", HandleDeleteChatSession(opts.Chat))
			r.Get("/export", HandleExportChat(opts.Chat))
			r.Get("/stats", HandleChatStats(opts.Chat))
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/stats", HandleAdminStats(opts.Admin))
			r.Get("/users", HandleAdminListUsers(opts.Admin))
			r.Get("/users/{id}", HandleAdminGetUser(opts.Admin))
		})

		r.Route("/api/ai-config", func(r chi.Router) {
			r.Get("/", HandleListAIConfigs(opts.AIConfig))
			r.Post("/", HandleCreateAIConfig(opts.AIConfig, opts.Validator))
			r.Put("/{id}/toggle", HandleToggleAIConfig(opts.AIConfig))
			r.Get("/active", HandleActiveAIConfig(opts.AIConfig))
			r.Post("/test", HandleTestAIConfig(opts.AIConfig))
		})

		r.Get("/api/logs", HandleQueryLogs(opts.Logs))
		r.Get("/api/logs/stats", HandleLogStats(opts.Logs))
		r.Delete("/api/logs", HandleClearLogs(opts.Logs))
	})

	return r
}

// NewH2CHandler wraps the router to serve HTTP/2 over cleartext alongside HTTP/1.1.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
