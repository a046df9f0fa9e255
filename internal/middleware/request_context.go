// Package middleware contains the HTTP middleware chain: request context,
// metrics, rate limiting, authentication and authorization.
package middleware

import (
	"net"
	"net/http"
	"runtime/debug"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/focusflow/focusapi/internal/requestctx"
)

// RequestIDHeader carries the correlation id on every response.
const RequestIDHeader = "X-Request-ID"

// RequestContextOption configures the request context middleware.
type RequestContextOption func(*requestContextConfig)

type requestContextConfig struct {
	now   func() time.Time
	newID func() string
}

// WithRequestClock overrides the clock used for StartedAt and durations.
func WithRequestClock(now func() time.Time) RequestContextOption {
	return func(c *requestContextConfig) { c.now = now }
}

// RequestContext opens a RequestContext for every request, stamps the
// correlation id on the response and logs exactly one "response sent" or
// "error" event per request. Panics are logged and re-raised unchanged.
func RequestContext(base zerolog.Logger, opts ...RequestContextOption) func(http.Handler) http.Handler {
	cfg := requestContextConfig{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := &requestctx.RequestContext{
				CorrelationID: cfg.newID(),
				StartedAt:     cfg.now(),
				ClientAddress: ClientAddress(r),
				Method:        r.Method,
				Path:          r.URL.Path,
			}
			w.Header().Set(RequestIDHeader, rc.CorrelationID)

			logger := base.With().Str("correlation_id", rc.CorrelationID).Logger()
			ctx := logger.WithContext(requestctx.With(r.Context(), rc))

			received := logger.Info().
				Str("method", rc.Method).
				Str("path", rc.Path).
				Str("client_address", rc.ClientAddress)
			if id := rc.PrincipalID(); id != "" {
				received = received.Str("principal_id", id)
			}
			received.Msg("request received")

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				logger.Error().
					Str("kind", "panic").
					Interface("detail", p).
					Str("principal_id", rc.PrincipalID()).
					Dur("duration", cfg.now().Sub(rc.StartedAt)).
					Bytes("stack", debug.Stack()).
					Msg("error")
				panic(p)
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := cfg.now().Sub(rc.StartedAt)

			if f := rc.Failure(); f != nil {
				logger.Error().
					Str("kind", f.Kind).
					Err(f.Err).
					Int("status", status).
					Str("principal_id", rc.PrincipalID()).
					Dur("duration", elapsed).
					Str("stack", f.Stack).
					Msg("error")
				return
			}
			logger.Info().
				Int("status", status).
				Dur("duration", elapsed).
				Str("principal_id", rc.PrincipalID()).
				Msg("response sent")
		})
	}
}

// ClientAddress returns the host part of RemoteAddr. Forwarding headers are
// not consulted; deployments behind a trusted proxy install chimw.RealIP
// ahead of this middleware so RemoteAddr already holds the client.
func ClientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RoutePath returns the request path with one trailing slash removed, the
// form chimw.StripSlashes routes on.
func RoutePath(r *http.Request) string {
	path := r.URL.RawPath
	if path == "" {
		path = r.URL.Path
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		return path[:len(path)-1]
	}
	return path
}
