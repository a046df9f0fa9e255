// Package presenter writes JSON responses and error bodies.
package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/requestctx"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id"`
}

// MessageResponse acknowledges an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

// Message writes {"message": msg} with status 200.
func Message(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, r, MessageResponse{Message: msg}, http.StatusOK)
}

// Error maps err to its status code and writes an error body. Internal
// errors are recorded on the request context and their cause is never sent.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		requestctx.From(r.Context()).RecordFailure(string(kind), err)
	}
	if kind == apperr.KindUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	Detail(w, r, apperr.MessageOf(err), apperr.HTTPStatus(kind))
}

// Detail writes an error body with an explicit message and status.
func Detail(w http.ResponseWriter, r *http.Request, detail string, status int) {
	JSON(w, r, ErrorResponse{Detail: detail, RequestID: requestctx.CorrelationID(r.Context())}, status)
}
