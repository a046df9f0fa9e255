package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusapi/internal/presenter"
)

const healthTimeout = 2 * time.Second

// HandleRoot reports the service name and build version.
func HandleRoot(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presenter.JSON(w, r, map[string]string{
			"name":    "FocusFlow API",
			"version": version,
			"status":  "running",
		}, http.StatusOK)
	}
}

// HandleHealth pings the database. A nil pinger reports healthy.
func HandleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				presenter.JSON(w, r, map[string]string{
					"status":   "unhealthy",
					"database": "disconnected",
				}, http.StatusServiceUnavailable)
				return
			}
		}
		presenter.JSON(w, r, map[string]string{
			"status":   "healthy",
			"database": "connected",
		}, http.StatusOK)
	}
}
