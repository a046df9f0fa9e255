// Package aiconfig manages AI provider configurations. Provider keys are
// sealed before storage and only opened for the active configuration lookup.
package aiconfig

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/telemetry"
)

const tracerName = "focusapi/services/aiconfig"

// Defaults applied on create.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// MockTestResponse is returned by Test until provider calls are implemented.
const MockTestResponse = "Mock AI response - integration pending"

// CreateInput describes a new provider configuration.
type CreateInput struct {
	Provider    string   `json:"provider"`
	ModelName   string   `json:"model_name"`
	APIKey      string   `json:"api_key"`
	APIEndpoint *string  `json:"api_endpoint"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	Priority    int      `json:"priority"`
}

// Active is the resolved active configuration including the plaintext key.
type Active struct {
	Provider    string  `json:"provider"`
	ModelName   string  `json:"model_name"`
	APIKey      string  `json:"api_key"`
	APIEndpoint *string `json:"api_endpoint"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// TestResult reports a configuration test.
type TestResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	TestResponse string `json:"test_response"`
}

// Service manages AI configurations.
type Service struct {
	configs repository.AIConfigRepository
	sealer  *Sealer
	now     func() time.Time
}

// NewService creates an AI configuration service.
func NewService(configs repository.AIConfigRepository, sealer *Sealer) *Service {
	return &Service{configs: configs, sealer: sealer, now: time.Now}
}

// List returns every configuration by descending priority.
func (s *Service) List(ctx context.Context) ([]models.AIConfig, error) {
	items, err := s.configs.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to list AI configs", err)
	}
	return items, nil
}

// Create seals the API key and stores an active configuration.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.AIConfig, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "aiconfig.Create",
		attribute.String("ai_config.provider", in.Provider),
	)
	defer span.End()

	if in.Provider == "" || in.ModelName == "" || in.APIKey == "" {
		return nil, apperr.Malformed("provider, model_name and api_key are required")
	}
	temperature := DefaultTemperature
	if in.Temperature != nil {
		temperature = *in.Temperature
	}
	if temperature < 0 || temperature > 2 {
		return nil, apperr.Malformed("temperature must be between 0 and 2")
	}
	maxTokens := DefaultMaxTokens
	if in.MaxTokens != nil {
		maxTokens = *in.MaxTokens
	}
	if maxTokens <= 0 {
		return nil, apperr.Malformed("max_tokens must be positive")
	}

	sealed, err := s.sealer.Seal(in.APIKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to store AI config", err)
	}

	now := s.now().UTC()
	cfg := &models.AIConfig{
		Provider:          in.Provider,
		ModelName:         in.ModelName,
		APIKeySealed:      sealed,
		APIKeyFingerprint: Fingerprint(in.APIKey),
		APIEndpoint:       in.APIEndpoint,
		Temperature:       temperature,
		MaxTokens:         maxTokens,
		IsActive:          true,
		Priority:          in.Priority,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.configs.Create(ctx, cfg); err != nil {
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to store AI config", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrAIConfigID, cfg.ID))
	zerolog.Ctx(ctx).Info().
		Str("ai_config_id", cfg.ID).
		Str("provider", cfg.Provider).
		Str("key_fingerprint", FormatFingerprint(cfg.APIKeyFingerprint)).
		Msg("ai config created")
	return cfg, nil
}

// Toggle flips is_active and returns the updated configuration.
func (s *Service) Toggle(ctx context.Context, id string) (*models.AIConfig, error) {
	cfg, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg.IsActive = !cfg.IsActive
	cfg.UpdatedAt = s.now().UTC()
	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, mapRepoErr(err)
	}
	return cfg, nil
}

// Active returns the highest priority active configuration with its key opened.
func (s *Service) Active(ctx context.Context) (*Active, error) {
	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("No active AI config found")
		}
		return nil, apperr.Internal("Failed to load AI config", err)
	}
	key, err := s.sealer.Open(cfg.APIKeySealed)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("ai_config_id", cfg.ID).Msg("cannot unseal api key")
		return nil, apperr.Internal("Failed to load AI config", err)
	}
	return &Active{
		Provider:    cfg.Provider,
		ModelName:   cfg.ModelName,
		APIKey:      key,
		APIEndpoint: cfg.APIEndpoint,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, nil
}

// Test checks that a configuration exists. Provider calls are mocked.
func (s *Service) Test(ctx context.Context, id, prompt string) (*TestResult, error) {
	cfg, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("ai_config_id", id).Int("prompt_len", len(prompt)).Msg("ai config test")
	return &TestResult{
		Success:      true,
		Message:      "AI config test successful",
		Provider:     cfg.Provider,
		Model:        cfg.ModelName,
		TestResponse: MockTestResponse,
	}, nil
}

func (s *Service) get(ctx context.Context, id string) (*models.AIConfig, error) {
	cfg, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return cfg, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("AI config not found")
	}
	return apperr.Internal("AI config operation failed", err)
}
