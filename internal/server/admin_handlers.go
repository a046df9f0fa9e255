package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/services/admin"
)

// HandleAdminStats handles GET /api/admin/stats.
func HandleAdminStats(svc *admin.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, stats, http.StatusOK)
	}
}

// HandleAdminListUsers handles GET /api/admin/users.
func HandleAdminListUsers(svc *admin.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageQuery(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		users, err := svc.Users(r.Context(), page)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, users, http.StatusOK)
	}
}

// HandleAdminGetUser handles GET /api/admin/users/{id}.
func HandleAdminGetUser(svc *admin.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.User(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, detail, http.StatusOK)
	}
}
