package authn

import (
	"context"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
)

// ProfileUpdate holds the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name       *string
	Timezone   *string
	Language   *string
	Occupation *string
	WorkMode   *string
}

// UpdateProfile applies update to user and persists it.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, update ProfileUpdate) (*models.User, error) {
	updated := *user
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Timezone != nil && *update.Timezone != "" {
		updated.Timezone = *update.Timezone
	}
	if update.Language != nil && *update.Language != "" {
		updated.Language = *update.Language
	}
	if update.Occupation != nil {
		updated.Occupation = update.Occupation
	}
	if update.WorkMode != nil {
		updated.WorkMode = update.WorkMode
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, apperr.Internal("Failed to update profile", err)
	}
	return &updated, nil
}
