package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/auth"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
)

// intQuery parses an integer query parameter. Absent parameters yield def.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Malformed(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Malformed(fmt.Sprintf("%s must be a boolean", name))
	}
	return &v, nil
}

// pageQuery reads skip and limit. A zero limit lets the service apply its default.
func pageQuery(r *http.Request) (repository.Page, error) {
	skip, err := intQuery(r, "skip", 0)
	if err != nil {
		return repository.Page{}, err
	}
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		return repository.Page{}, err
	}
	if r.URL.Query().Has("limit") && limit == 0 {
		return repository.Page{}, apperr.Malformed("limit must be positive")
	}
	return repository.Page{Skip: skip, Limit: limit}, nil
}

// principal returns the authenticated user. Routes behind Authenticate always have one.
func principal(r *http.Request) (*models.User, error) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	return user, nil
}
