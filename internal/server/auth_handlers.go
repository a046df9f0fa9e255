package server

import (
	"mime"
	"net/http"
	"time"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/services/authn"
	"github.com/focusflow/focusapi/internal/services/validation"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Language string `json:"language"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name       *string `json:"name"`
	Timezone   *string `json:"timezone"`
	Language   *string `json:"language"`
	Occupation *string `json:"occupation"`
	WorkMode   *string `json:"work_mode"`
}

type sessionUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	SubscriptionTier string `json:"subscription_tier"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        sessionUser `json:"user"`
}

// ProfileResponse is the caller's own profile.
type ProfileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Timezone         string    `json:"timezone"`
	Language         string    `json:"language"`
	Occupation       *string   `json:"occupation"`
	WorkMode         *string   `json:"work_mode"`
	SubscriptionTier string    `json:"subscription_tier"`
	Role             string    `json:"role"`
	CreatedAt        time.Time `json:"created_at"`
}

func newTokenResponse(s *authn.Session) TokenResponse {
	return TokenResponse{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		ExpiresAt:   s.ExpiresAt,
		User: sessionUser{
			ID:               s.User.ID,
			Email:            s.User.Email,
			Name:             s.User.Name,
			SubscriptionTier: s.User.SubscriptionTier,
		},
	}
}

func newProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Timezone:         u.Timezone,
		Language:         u.Language,
		Occupation:       u.Occupation,
		WorkMode:         u.WorkMode,
		SubscriptionTier: u.SubscriptionTier,
		Role:             u.Role,
		CreatedAt:        u.CreatedAt,
	}
}

// HandleRegister handles POST /api/auth/register.
func HandleRegister(svc *authn.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := v.Decode(r.Body, validation.Register, &req); err != nil {
			presenter.Error(w, r, err)
			return
		}
		session, err := svc.Register(r.Context(), authn.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Timezone: req.Timezone,
			Language: req.Language,
		})
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, newTokenResponse(session), http.StatusOK)
	}
}

// HandleLogin handles POST /api/auth/login. It accepts a JSON body or an
// OAuth2 password form with username and password fields.
func HandleLogin(svc *authn.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/x-www-form-urlencoded", "multipart/form-data":
			if err := r.ParseForm(); err != nil {
				presenter.Error(w, r, apperr.Malformed("Invalid form body"))
				return
			}
			req.Email = r.PostForm.Get("username")
			req.Password = r.PostForm.Get("password")
		default:
			if err := v.Decode(r.Body, validation.Login, &req); err != nil {
				presenter.Error(w, r, err)
				return
			}
		}

		session, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, newTokenResponse(session), http.StatusOK)
	}
}

// HandleMe handles GET /api/auth/me.
func HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, newProfileResponse(user), http.StatusOK)
	}
}

// HandleUpdateMe handles PUT /api/auth/me.
func HandleUpdateMe(svc *authn.Service, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := principal(r)
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		var req profileRequest
		if err := v.Decode(r.Body, validation.ProfileUpdate, &req); err != nil {
			presenter.Error(w, r, err)
			return
		}
		updated, err := svc.UpdateProfile(r.Context(), user, authn.ProfileUpdate{
			Name:       req.Name,
			Timezone:   req.Timezone,
			Language:   req.Language,
			Occupation: req.Occupation,
			WorkMode:   req.WorkMode,
		})
		if err != nil {
			presenter.Error(w, r, err)
			return
		}
		presenter.JSON(w, r, map[string]any{
			"message": "User updated successfully",
			"user":    newProfileResponse(updated),
		}, http.StatusOK)
	}
}
