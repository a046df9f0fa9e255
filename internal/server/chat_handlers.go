package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/services/chat"
	"github.com/focusflow/focusapi/internal/services/validation"
)

// HandleCreateChatMessage handles POST /api/chat/messages.
func HandleCreateChatMessage(svc *chat.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var in chat.CreateInput
		if err := v.Decode(r.Body, validation.ChatMessage, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		msg, err := svc.Create(r.Context(), user.ID, in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, msg, http.StatusCreated)
	}
}

// HandleListChatMessages handles GET /api/chat/messages?session_id=.
func HandleListChatMessages(svc *chat.Service) http.HandlerFunc {
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
		msgs, err := svc.Messages(r.Context(), user.ID, r.URL.Query().Get("session_id"), page)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, msgs, http.StatusOK)
	}
}

// HandleDeleteChatMessage handles DELETE /api/chat/messages/{id}.
func HandleDeleteChatMessage(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		if err := svc.DeleteMessage(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.Message(w, r, "Message deleted successfully")
	}
}

// HandleListChatSessions handles GET /api/chat/sessions.
func HandleListChatSessions(svc *chat.Service) http.HandlerFunc {
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
		sessions, err := svc.Sessions(r.Context(), user.ID, page)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, sessions, http.StatusOK)
	}
}

// HandleDeleteChatSession handles DELETE /api/chat/sessions/{id}.
func HandleDeleteChatSession(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		n, err := svc.DeleteSession(r.Context(), user.ID, chi.URLParam(r, "id"))
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, map[string]any{
			"message":          "Session deleted successfully",
			"deleted_messages": n,
		}, http.StatusOK)
	}
}

// HandleExportChat handles GET /api/chat/export?session_id=&format=json|txt.
func HandleExportChat(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		q := r.URL.Query()
		export, err := svc.Export(r.Context(), user.ID, q.Get("session_id"), q.Get("format"))
		if err != nil {
			presenter.Error(w, r, err)
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename)
		w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(export.Body); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("write chat export")
		}
	}
}

// HandleChatStats handles GET /api/chat/stats.
func HandleChatStats(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		stats, err := svc.Stats(r.Context(), user.ID)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, stats, http.StatusOK)
	}
}
