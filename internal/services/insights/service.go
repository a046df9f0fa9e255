// Package insights manages generated productivity insights.
package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
)

// DefaultLimit bounds an insight listing when no limit is given.
const DefaultLimit = 50

const maxLimit = 200

var validPriorities = map[string]bool{
	models.PriorityLow: true, models.PriorityMedium: true,
	models.PriorityHigh: true, models.PriorityUrgent: true,
}

// CreateInput describes a new insight. Priority defaults to medium.
type CreateInput struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Actionable  bool    `json:"actionable"`
	ActionText  *string `json:"action_text"`
}

// Service manages insights.
type Service struct {
	insights repository.InsightRepository
}

// NewService creates an insight service.
func NewService(insights repository.InsightRepository) *Service {
	return &Service{insights: insights}
}

// List returns the user's insights, newest first.
func (s *Service) List(ctx context.Context, userID string, filter repository.InsightFilter) ([]models.Insight, error) {
	if filter.Skip < 0 {
		return nil, apperr.Malformed("skip must be non-negative")
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultLimit
	case filter.Limit < 0 || filter.Limit > maxLimit:
		return nil, apperr.Malformed(fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}

	items, err := s.insights.List(ctx, userID, filter)
	if err != nil {
		return nil, apperr.Internal("Failed to list insights", err)
	}
	return items, nil
}

// Create stores an unread insight.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Insight, error) {
	if in.Type == "" || in.Title == "" || in.Description == "" {
		return nil, apperr.Malformed("type, title and description are required")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriorities[priority] {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid priority: %s", priority))
	}

	insight := &models.Insight{
		UserID:      userID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Actionable:  in.Actionable,
		ActionText:  in.ActionText,
	}
	if err := s.insights.Create(ctx, insight); err != nil {
		return nil, apperr.Internal("Failed to create insight", err)
	}
	return insight, nil
}

// MarkRead flags an insight as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (*models.Insight, error) {
	return s.mutate(ctx, userID, id, func(i *models.Insight) { i.IsRead = true })
}

// ToggleFavorite flips the favorite flag and returns the updated insight.
func (s *Service) ToggleFavorite(ctx context.Context, userID, id string) (*models.Insight, error) {
	return s.mutate(ctx, userID, id, func(i *models.Insight) { i.IsFavorite = !i.IsFavorite })
}

func (s *Service) mutate(ctx context.Context, userID, id string, apply func(*models.Insight)) (*models.Insight, error) {
	insight, err := s.insights.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err, "Failed to load insight")
	}
	apply(insight)
	if err := s.insights.Update(ctx, insight); err != nil {
		return nil, mapRepoErr(err, "Failed to update insight")
	}
	return insight, nil
}

func mapRepoErr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Insight not found")
	}
	return apperr.Internal(msg, err)
}
