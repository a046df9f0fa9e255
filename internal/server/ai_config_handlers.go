package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/services/aiconfig"
	"github.com/focusflow/focusapi/internal/services/validation"
)

// DefaultTestPrompt is sent when POST /api/ai-config/test carries no prompt.
const DefaultTestPrompt = "Hello, this is a test."

// HandleListAIConfigs handles GET /api/ai-config. Keys are reported by fingerprint only.
func HandleListAIConfigs(svc *aiconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs, err := svc.List(r.Context())
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, configs, http.StatusOK)
	}
}

// HandleCreateAIConfig handles POST /api/ai-config.
func HandleCreateAIConfig(svc *aiconfig.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in aiconfig.CreateInput
		if err := v.Decode(r.Body, validation.AIConfigCreate, &in); err != nil {
			presenter.Error(w, r, err)
			return
		}
		cfg, err := svc.Create(r.Context(), in)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, cfg, http.StatusCreated)
	}
}

// HandleToggleAIConfig handles PUT /api/ai-config/{id}/toggle.
func HandleToggleAIConfig(svc *aiconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.Toggle(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, map[string]any{
			"message":   "AI config toggled",
			"is_active": cfg.IsActive,
		}, http.StatusOK)
	}
}

// HandleActiveAIConfig handles GET /api/ai-config/active. This is the one
// response that carries a decrypted key.
func HandleActiveAIConfig(svc *aiconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := svc.Active(r.Context())
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, active, http.StatusOK)
	}
}

// HandleTestAIConfig handles POST /api/ai-config/test?config_id=&test_prompt=.
func HandleTestAIConfig(svc *aiconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		prompt := q.Get("test_prompt")
		if prompt == "" {
			prompt = DefaultTestPrompt
		}
		result, err := svc.Test(r.Context(), q.Get("config_id"), prompt)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, result, http.StatusOK)
	}
}
