package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/services/tasks"
	"github.com/focusflow/focusapi/internal/services/validation"
)

// HandleListTasks handles GET /api/tasks.
func HandleListTasks(svc *tasks.Service) http.HandlerFunc {
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
		q := r.URL.Query()
		list, err := svc.List(r.Context(), user.ID, repository.TaskFilter{
			Status:   q.Get("status"),
			Priority: q.Get("priority"),
			Category: q.Get("category"),
			Page:     page,
		})
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, list, http.StatusOK)
	}
}

// HandleCreateTask handles POST /api/tasks.
func HandleCreateTask(svc *tasks.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in tasks.CreateInput
		if err := v.Decode(r.Body, validation.TaskCreate, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		task, err := svc.Create(r.Context(), user.ID, in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, task, http.StatusCreated)
	}
}

// HandleCreateTaskBatch handles POST /api/tasks/batch. The batch is all or nothing.
func HandleCreateTaskBatch(svc *tasks.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in []tasks.CreateInput
		if err := v.Decode(r.Body, validation.TaskBatch, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		created, err := svc.CreateBatch(r.Context(), user.ID, in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, created, http.StatusCreated)
	}
}

// HandleGetTask handles GET /api/tasks/{id}.
func HandleGetTask(svc *tasks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		task, err := svc.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, task, http.StatusOK)
	}
}

// HandleUpdateTask handles PUT /api/tasks/{id}.
func HandleUpdateTask(svc *tasks.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in tasks.UpdateInput
		if err := v.Decode(r.Body, validation.TaskUpdate, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		task, err := svc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, task, http.StatusOK)
	}
}

// HandleDeleteTask handles DELETE /api/tasks/{id}.
func HandleDeleteTask(svc *tasks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		if err := svc.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, nil, http.StatusNoContent)
	}
}
