package middleware

import (
	"context"
	"net/http"

	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/requestctx"
)

// Authenticator resolves the principal behind a request's headers.
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header) (*models.User, error)
}

// Authenticate rejects requests without a valid bearer token. The resolved
// principal is put on the context and recorded on the RequestContext.
func Authenticate(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authn.Authenticate(r.Context(), r.Header)
			if err != nil {
				presenter.Error(w, r, err)
				return
			}
			requestctx.From(r.Context()).SetPrincipal(user.ID)
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), user)))
		})
	}
}
