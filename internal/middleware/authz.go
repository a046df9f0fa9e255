package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/presenter"
)

// Authorize enforces the casbin route policy for the authenticated principal's role.
// It must run after Authenticate.
func Authorize(authz *auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				presenter.Error(w, r, apperr.Unauthorized("Not authenticated"))
				return
			}

			path := RoutePath(r)
			allowed, err := authz.Authorize(user.Role, path, r.Method)
			if err != nil {
				presenter.Error(w, r, apperr.Internal("Authorization failed", err))
				return
			}
			if !allowed {
				zerolog.Ctx(r.Context()).Warn().
					Str("principal_id", user.ID).
					Str("role", user.Role).
					Str("method", r.Method).
					Str("path", path).
					Msg("access denied")
				presenter.Error(w, r, apperr.Forbidden("Not enough permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
