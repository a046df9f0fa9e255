package auth

import (
	"context"

	"github.com/focusflow/focusapi/internal/db/models"
)

type principalContextKey struct{}

// WithPrincipal stores the authenticated user on the context for downstream handlers.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext retrieves the authenticated user from the context.
func PrincipalFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(principalContextKey{}).(*models.User)
	return user, ok && user != nil
}
