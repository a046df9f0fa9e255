package server

import (
	"net/http"

	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/services/logs"
	"github.com/focusflow/focusapi/internal/services/validation"
)

// HandleClientError handles POST /api/logs/error. It is public so the
// frontend can report failures before sign-in.
func HandleClientError(svc *logs.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in logs.ClientError
		if err := v.Decode(r.Body, validation.ClientError, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		if err := svc.RecordClientError(r.Context(), in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.Message(w, r, "Error logged successfully")
	}
}

// HandleQueryLogs handles GET /api/logs.
func HandleQueryLogs(svc *logs.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := intQuery(r, "page", 1)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		pageSize, err := intQuery(r, "page_size", logs.DefaultPageSize)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		q := r.URL.Query()
		result, err := svc.Query(r.Context(), logs.Query{
			Level:     q.Get("level"),
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
			Search:    q.Get("search"),
			Filter:    q.Get("filter"),
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, result, http.StatusOK)
	}
}

// HandleLogStats handles GET /api/logs/stats.
func HandleLogStats(svc *logs.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, stats, http.StatusOK)
	}
}

// HandleClearLogs handles DELETE /api/logs. Refused in production.
func HandleClearLogs(svc *logs.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.Message(w, r, "Logs cleared successfully")
	}
}
