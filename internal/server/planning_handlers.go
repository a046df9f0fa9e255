package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/services/goals"
	"github.com/focusflow/focusapi/internal/services/habits"
	"github.com/focusflow/focusapi/internal/services/insights"
	"github.com/focusflow/focusapi/internal/services/validation"
)

// HandleListGoals handles GET /api/goals.
func HandleListGoals(svc *goals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		list, err := svc.List(r.Context(), user.ID)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, list, http.StatusOK)
	}
}

// HandleCreateGoal handles POST /api/goals.
func HandleCreateGoal(svc *goals.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in goals.CreateInput
		if err := v.Decode(r.Body, validation.GoalCreate, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		goal, err := svc.Create(r.Context(), user.ID, in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, goal, http.StatusCreated)
	}
}

// HandleListHabits handles GET /api/habits.
func HandleListHabits(svc *habits.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		list, err := svc.List(r.Context(), user.ID)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, list, http.StatusOK)
	}
}

// HandleCreateHabit handles POST /api/habits.
func HandleCreateHabit(svc *habits.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in habits.CreateInput
		if err := v.Decode(r.Body, validation.HabitCreate, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		habit, err := svc.Create(r.Context(), user.ID, in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, habit, http.StatusCreated)
	}
}

type checkInRequest struct {
	Date *string `json:"date"`
}

// HandleCheckInHabit handles POST /api/habits/{id}/check-in. The body is
// optional; without a date the check-in lands on today.
func HandleCheckInHabit(svc *habits.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, validation.MaxBodyBytes+1))
		if err != nil {
			presenter.Error(w, r, apperr.Malformed("Invalid request body"))
			return
		}
		var req checkInRequest
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := v.Decode(bytes.NewReader(raw), validation.HabitCheckIn, &req); err != nil {
				presenter.Error(w, r, err)
				return
			}
		}
		date := r.URL.Query().Get("date")
		if req.Date != nil {
			date = *req.Date
		}

		habit, err := svc.CheckIn(r.Context(), user.ID, chi.URLParam(r, "id"), date)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, habit, http.StatusOK)
	}
}

// HandleListInsights handles GET /api/insights.
func HandleListInsights(svc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		page, err := pageQuery(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		isRead, err := boolQuery(r, "is_read")
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		isFavorite, err := boolQuery(r, "is_favorite")
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		list, err := svc.List(r.Context(), user.ID, repository.InsightFilter{
			IsRead:     isRead,
			IsFavorite: isFavorite,
			Page:       page,
		})
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, list, http.StatusOK)
	}
}

// HandleCreateInsight handles POST /api/insights.
func HandleCreateInsight(svc *insights.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in insights.CreateInput
		if err := v.Decode(r.Body, validation.InsightCreate, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		insight, err := svc.Create(r.Context(), user.ID, in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, insight, http.StatusCreated)
	}
}

// HandleMarkInsightRead handles PUT /api/insights/{id}/read.
func HandleMarkInsightRead(svc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		if _, err := svc.MarkRead(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.Message(w, r, "Insight marked as read")
	}
}

// HandleToggleInsightFavorite handles PUT /api/insights/{id}/favorite.
func HandleToggleInsightFavorite(svc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		insight, err := svc.ToggleFavorite(r.Context(), user.ID, chi.URLParam(r, "id"))
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, map[string]any{
			"message":     "Insight favorite toggled",
			"is_favorite": insight.IsFavorite,
		}, http.StatusOK)
	}
}
