package cmdutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/uptrace/bun"

	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/config"
	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/migrations"
	"github.com/focusflow/focusapi/internal/repository"
)

// StoreBundle bundles the user repository with its underlying DB connection
// so commands can reuse the connection for other repositories.
type StoreBundle struct {
	DB     *bun.DB
	Users  repository.UserRepository
	Hasher *auth.BcryptHasher
}

// Close releases the underlying database connection.
func (b *StoreBundle) Close() {
	if b == nil || b.DB == nil {
		return
	}
	bunx.Close(b.DB)
}

// OpenStore connects to the configured database and applies pending migrations.
func OpenStore(ctx context.Context, cfg *config.Config) (*StoreBundle, error) {
	db, err := bunx.NewDB(cfg.DatabaseURL, bunx.WithMaxOpenConns(cfg.MaxDBConnections))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := migrations.Apply(ctx, db); err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &StoreBundle{
		DB:     db,
		Users:  repository.NewBunUserRepository(db),
		Hasher: auth.NewBcryptHasher(cfg.Auth.BcryptCost),
	}, nil
}

// UserSpec describes an account created from the command line.
type UserSpec struct {
	Email    string
	Name     string
	Password string
	Role     string
	Tier     string
}

// ErrUserExists is returned by CreateUser when the email is taken.
var ErrUserExists = errors.New("user already exists")

// CreateUser validates in and stores a new user with a hashed password.
func CreateUser(ctx context.Context, users repository.UserRepository, hasher *auth.BcryptHasher, in UserSpec) (*models.User, error) {
	if in.Email == "" {
		return nil, errors.New("email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}
	if in.Password == "" {
		return nil, errors.New("password is required")
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role != models.RoleUser && in.Role != models.RoleAdmin {
		return nil, fmt.Errorf("invalid role %q", in.Role)
	}
	switch in.Tier {
	case "":
		in.Tier = models.TierFree
	case models.TierFree, models.TierPremium, models.TierPro:
	default:
		return nil, fmt.Errorf("invalid tier %q", in.Tier)
	}

	if _, err := users.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, in.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Email:            in.Email,
		PasswordHash:     hash,
		Name:             in.Name,
		Timezone:         models.DefaultTimezone,
		Language:         models.DefaultLanguage,
		SubscriptionTier: in.Tier,
		Role:             in.Role,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, in.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin account unless the email is already registered.
// An existing account is promoted to admin when needed; its password is left alone.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, hasher *auth.BcryptHasher, email, password string) (*models.User, bool, error) {
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, false, nil
		}
		existing.Role = models.RoleAdmin
		if err := users.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to promote %s: %w", email, err)
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("failed to check existing user: %w", err)
	}

	user, err := CreateUser(ctx, users, hasher, UserSpec{
		Email:    email,
		Name:     "Admin",
		Password: password,
		Role:     models.RoleAdmin,
		Tier:     models.TierPro,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// ReadPassword returns flagValue, or the first line of in when fromStdin is set.
func ReadPassword(in io.Reader, flagValue string, fromStdin bool) (string, error) {
	if !fromStdin {
		return flagValue, nil
	}
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return "", nil
}
