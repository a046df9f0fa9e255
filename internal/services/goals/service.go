// Package goals manages a user's goals.
package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
)

var validTypes = map[string]bool{
	models.GoalDaily: true, models.GoalWeekly: true, models.GoalMonthly: true,
	models.GoalQuarterly: true, models.GoalYearly: true,
}

// CreateInput describes a new goal.
type CreateInput struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Type        string    `json:"type"`
	TargetValue *float64  `json:"target_value"`
	Unit        *string   `json:"unit"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// Service manages goals.
type Service struct {
	goals repository.GoalRepository
}

// NewService creates a goal service.
func NewService(goals repository.GoalRepository) *Service {
	return &Service{goals: goals}
}

// List returns the user's goals.
func (s *Service) List(ctx context.Context, userID string) ([]models.Goal, error) {
	goals, err := s.goals.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to list goals", err)
	}
	return goals, nil
}

// Create stores an active goal with no progress.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Goal, error) {
	switch {
	case in.Title == "":
		return nil, apperr.Malformed("Title is required")
	case !validTypes[in.Type]:
		return nil, apperr.Malformed(fmt.Sprintf("Invalid goal type: %s", in.Type))
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return nil, apperr.Malformed("start_date and end_date are required")
	case in.EndDate.Before(in.StartDate):
		return nil, apperr.Malformed("end_date must not precede start_date")
	case in.TargetValue != nil && *in.TargetValue < 0:
		return nil, apperr.Malformed("target_value must be non-negative")
	}

	goal := &models.Goal{
		UserID:       userID,
		Title:        in.Title,
		Description:  in.Description,
		Type:         in.Type,
		TargetValue:  in.TargetValue,
		CurrentValue: 0,
		Unit:         in.Unit,
		StartDate:    in.StartDate.UTC(),
		EndDate:      in.EndDate.UTC(),
		Status:       models.GoalStatusActive,
		Progress:     0,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, apperr.Internal("Failed to create goal", err)
	}
	return goal, nil
}
