// Package authn registers and logs in users and resolves bearer tokens back to principals.
package authn

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/telemetry"
)

const tracerName = "focusapi/services/authn"

// DefaultTokenTTL applies when no TTL is configured.
const DefaultTokenTTL = 24 * time.Hour

// Caller-visible messages. They never reveal which check failed.
const (
	MsgBadCredentials   = "Incorrect email or password"
	MsgInvalidToken     = "Could not validate credentials"
	MsgEmailRegistered  = "Email already registered"
	MsgMissingEmailPass = "Email and password are required"
	MsgInvalidEmail     = "Invalid email address"
)

// Hasher produces and verifies password hashes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenCodec issues and resolves bearer tokens.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, time.Time, error)
	Resolve(token string) (string, error)
}

// RegisterInput carries the registration form. Empty profile fields take defaults.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Timezone string
	Language string
}

// Session is the result of a successful register or login.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *models.User
}

// Service implements registration, login and token resolution.
type Service struct {
	users   repository.UserRepository
	hasher  Hasher
	tokens  TokenCodec
	ttl     time.Duration
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewService creates an authentication service with the default token TTL.
func NewService(users repository.UserRepository, hasher Hasher, tokens TokenCodec) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
}

// WithTokenTTL overrides the lifetime of issued tokens.
func (s *Service) WithTokenTTL(ttl time.Duration) *Service {
	if ttl >= 0 {
		s.ttl = ttl
	}
	return s
}

// WithMetrics enables authentication attempt counters.
func (s *Service) WithMetrics(m *telemetry.Metrics) *Service {
	s.metrics = m
	return s
}

// WithClock overrides the clock used for last-login timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a principal and issues its first token.
// The email must not already be registered; the comparison is exact.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "authn.Register")
	defer span.End()

	if in.Email == "" || in.Password == "" {
		return nil, apperr.Malformed(MsgMissingEmailPass)
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return nil, apperr.Malformed(MsgInvalidEmail)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		s.metrics.RecordAuth("register", "conflict")
		return nil, apperr.Conflict(MsgEmailRegistered)
	} else if !errors.Is(err, repository.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to register user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperr.Malformed("Password must be at most 72 bytes")
		}
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to register user", err)
	}

	user := &models.User{
		Email:            in.Email,
		PasswordHash:     hash,
		Name:             in.Name,
		Timezone:         orDefault(in.Timezone, models.DefaultTimezone),
		Language:         orDefault(in.Language, models.DefaultLanguage),
		SubscriptionTier: models.TierFree,
		Role:             models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index decides concurrent registrations of the same email.
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.RecordAuth("register", "conflict")
			return nil, apperr.Conflict(MsgEmailRegistered)
		}
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to register user", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrUserID, user.ID))

	sess, err := s.issue(user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordAuth("register", "success")
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")
	return sess, nil
}

// Login verifies credentials and issues a fresh token.
// Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "authn.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordAuth("login", "failure")
			span.SetAttributes(attribute.String(telemetry.AttrAuthOutcome, "failure"))
			return nil, apperr.Unauthorized(MsgBadCredentials)
		}
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to log in", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordAuth("login", "failure")
		span.SetAttributes(attribute.String(telemetry.AttrAuthOutcome, "failure"))
		return nil, apperr.Unauthorized(MsgBadCredentials)
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	sess, err := s.issue(user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordAuth("login", "success")
	span.SetAttributes(
		attribute.String(telemetry.AttrUserID, user.ID),
		attribute.String(telemetry.AttrAuthOutcome, "success"),
	)
	return sess, nil
}

// ResolvePrincipal maps a bearer token to its user with exactly one store read.
// Every token failure is reported as the same Unauthorized error.
func (s *Service) ResolvePrincipal(ctx context.Context, token string) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "authn.ResolvePrincipal")
	defer span.End()

	subject, err := s.tokens.Resolve(token)
	if err != nil {
		reason := tokenFailure(err)
		zerolog.Ctx(ctx).Debug().Str("reason", reason).Msg("token rejected")
		span.SetAttributes(attribute.String(telemetry.AttrTokenFailure, reason))
		s.metrics.RecordAuth("resolve", reason)
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			zerolog.Ctx(ctx).Debug().Str("reason", "unknown_subject").Msg("token rejected")
			s.metrics.RecordAuth("resolve", "unknown_subject")
			return nil, apperr.Unauthorized(MsgInvalidToken)
		}
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to load user", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrUserID, user.ID))
	return user, nil
}

// Authenticate extracts the Authorization bearer token from headers and resolves it.
func (s *Service) Authenticate(ctx context.Context, header http.Header) (*models.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		s.metrics.RecordAuth("resolve", "missing")
		return nil, apperr.Unauthorized("Not authenticated")
	}
	return s.ResolvePrincipal(ctx, token)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(header http.Header) (string, bool) {
	value := strings.TrimSpace(header.Get("Authorization"))
	scheme, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user.ID, s.ttl)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		User:        user,
	}, nil
}

func tokenFailure(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
