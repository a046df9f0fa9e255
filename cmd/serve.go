package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/middleware"
	"github.com/focusflow/focusapi/internal/migrations"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/server"
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

const schemaCacheSize = 32

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FocusFlow API server",
	Long:  `Applies pending migrations and starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.Logger

		shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: Version,
			Environment:    cfg.AppEnv,
			Endpoint:       cfg.Telemetry.OTLPEndpoint,
			Insecure:       cfg.Telemetry.OTLPInsecure,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				log.Warn().Err(err).Msg("tracing shutdown failed")
			}
		}()

		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, bunx.WithMaxOpenConns(cfg.MaxDBConnections))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		log.Info().Str("dialect", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Msg("connected to database")

		group, err := migrations.Apply(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		if group.ID != 0 {
			log.Info().Int64("group", group.ID).Msg("applied migrations")
		}

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		taskRepo := repository.NewBunTaskRepository(db)
		insightRepo := repository.NewBunInsightRepository(db)

		metrics := telemetry.NewMetrics()

		codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret)
		if err != nil {
			return fmt.Errorf("failed to create token codec: %w", err)
		}
		authorizer, err := auth.NewAuthorizer()
		if err != nil {
			return fmt.Errorf("failed to load authorization policy: %w", err)
		}
		validator, err := validation.NewValidator(schemaCacheSize)
		if err != nil {
			return fmt.Errorf("failed to load request schemas: %w", err)
		}
		sealer, generated, err := aiconfig.NewSealerFromConfig(cfg.AI.EncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to create AI key sealer: %w", err)
		}
		if generated {
			log.Warn().Msg("FOCUS_AI_ENCRYPTION_KEY not set, stored AI keys will not survive a restart")
		}

		var limiter *middleware.RateLimiter
		if cfg.RateLimit.Requests > 0 {
			limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
		corsOpts := server.DefaultCORSOptions(cfg.CORS.AllowedOrigins)

		// Initialize services
		routerOpts := server.RouterOptions{
			Logger:  log,
			Version: Version,
			DB:      db,
			Authn: authn.NewService(userRepo, auth.NewBcryptHasher(cfg.Auth.BcryptCost), codec).
				WithTokenTTL(cfg.Auth.TokenTTL).
				WithMetrics(metrics),
			Authorizer:  authorizer,
			Validator:   validator,
			Tasks:       tasks.NewService(taskRepo),
			Goals:       goals.NewService(repository.NewBunGoalRepository(db)),
			Habits:      habits.NewService(repository.NewBunHabitRepository(db)),
			Insights:    insights.NewService(insightRepo),
			Chat:        chat.NewService(repository.NewBunChatRepository(db)),
			Admin:       admin.NewService(userRepo, taskRepo, insightRepo),
			AIConfig:    aiconfig.NewService(repository.NewBunAIConfigRepository(db), sealer),
			Logs:        logs.NewService(cfg.Log.Dir, cfg.IsProduction()),
			RateLimiter: limiter,
			Metrics:     metrics,
			CORSOptions: &corsOpts,
			TrustProxy:  cfg.TrustProxy,
		}

		// Wrap router with h2c for HTTP/2 cleartext support
		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      server.NewH2CHandler(routerOpts),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.ServerAddr).Str("env", cfg.AppEnv).Str("version", Version).Msg("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

			// Graceful shutdown with timeout
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(sctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Info().Msg("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
