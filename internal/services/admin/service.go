// Package admin aggregates cross-user statistics for administrators.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
)

// DefaultUserLimit bounds the user listing when no limit is given.
const DefaultUserLimit = 50

// Stats summarises platform usage.
type Stats struct {
	TotalUsers       int `json:"total_users"`
	ActiveUsersToday int `json:"active_users_today"`
	TotalTasks       int `json:"total_tasks"`
	CompletedTasks   int `json:"completed_tasks"`
	TotalInsights    int `json:"total_insights"`
	PremiumUsers     int `json:"premium_users"`
	ProUsers         int `json:"pro_users"`
}

// UserTaskStats counts one user's tasks.
type UserTaskStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}

// UserDetail is a user with their task counts.
type UserDetail struct {
	User  *models.User  `json:"user"`
	Stats UserTaskStats `json:"stats"`
}

// Service answers administrator queries.
type Service struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	insights repository.InsightRepository
	now      func() time.Time
}

// NewService creates an admin service.
func NewService(users repository.UserRepository, tasks repository.TaskRepository, insights repository.InsightRepository) *Service {
	return &Service{users: users, tasks: tasks, insights: insights, now: time.Now}
}

// WithClock overrides the clock that decides "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Stats counts users, tasks and insights. Active users are the distinct
// owners of tasks created since midnight UTC.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var st Stats
	counts := []struct {
		name string
		dst  *int
		fn   func() (int, error)
	}{
		{"users", &st.TotalUsers, func() (int, error) { return s.users.Count(ctx, "") }},
		{"premium users", &st.PremiumUsers, func() (int, error) { return s.users.Count(ctx, models.TierPremium) }},
		{"pro users", &st.ProUsers, func() (int, error) { return s.users.Count(ctx, models.TierPro) }},
		{"active users", &st.ActiveUsersToday, func() (int, error) { return s.tasks.CountActiveOwners(ctx, midnight) }},
		{"tasks", &st.TotalTasks, func() (int, error) { return s.tasks.Count(ctx, repository.TaskCountFilter{}) }},
		{"completed tasks", &st.CompletedTasks, func() (int, error) {
			return s.tasks.Count(ctx, repository.TaskCountFilter{Status: models.TaskStatusCompleted})
		}},
		{"insights", &st.TotalInsights, func() (int, error) { return s.insights.Count(ctx) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return nil, apperr.Internal("Failed to compute stats", fmt.Errorf("count %s: %w", c.name, err))
		}
		*c.dst = n
	}
	return &st, nil
}

// Users lists users, newest first.
func (s *Service) Users(ctx context.Context, page repository.Page) ([]models.User, error) {
	if page.Skip < 0 || page.Limit < 0 {
		return nil, apperr.Malformed("skip and limit must be non-negative")
	}
	if page.Limit == 0 {
		page.Limit = DefaultUserLimit
	}
	users, err := s.users.List(ctx, page)
	if err != nil {
		return nil, apperr.Internal("Failed to list users", err)
	}
	return users, nil
}

// User returns one user with their task counts.
func (s *Service) User(ctx context.Context, id string) (*UserDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}

	total, err := s.tasks.Count(ctx, repository.TaskCountFilter{UserID: id})
	if err != nil {
		return nil, apperr.Internal("Failed to count tasks", err)
	}
	completed, err := s.tasks.Count(ctx, repository.TaskCountFilter{UserID: id, Status: models.TaskStatusCompleted})
	if err != nil {
		return nil, apperr.Internal("Failed to count tasks", err)
	}
	return &UserDetail{User: user, Stats: UserTaskStats{TotalTasks: total, CompletedTasks: completed}}, nil
}
