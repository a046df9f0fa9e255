// Package habits manages recurring habits and their check-in streaks.
package habits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
)

var validFrequencies = map[string]bool{
	models.FrequencyDaily: true, models.FrequencyWeekly: true, models.FrequencyCustom: true,
}

// CreateInput describes a new habit. Frequency defaults to daily.
type CreateInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Frequency   string  `json:"frequency"`
	TargetDays  []int   `json:"target_days"`
}

// Service manages habits.
type Service struct {
	habits repository.HabitRepository
	now    func() time.Time
}

// NewService creates a habit service.
func NewService(habits repository.HabitRepository) *Service {
	return &Service{habits: habits, now: time.Now}
}

// WithClock overrides the clock that decides "today" for check-ins.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// List returns the user's habits.
func (s *Service) List(ctx context.Context, userID string) ([]models.Habit, error) {
	habits, err := s.habits.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to list habits", err)
	}
	return habits, nil
}

// Create stores a habit with an empty streak.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Habit, error) {
	if in.Title == "" {
		return nil, apperr.Malformed("Title is required")
	}
	freq := in.Frequency
	if freq == "" {
		freq = models.FrequencyDaily
	}
	if !validFrequencies[freq] {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid frequency: %s", freq))
	}
	for _, d := range in.TargetDays {
		if d < 0 || d > 6 {
			return nil, apperr.Malformed("target_days must be weekdays 0-6")
		}
	}

	habit := &models.Habit{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Frequency:   freq,
		TargetDays:  models.IntList(in.TargetDays),
	}
	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, apperr.Internal("Failed to create habit", err)
	}
	return habit, nil
}

// CheckIn marks the habit done on date (YYYY-MM-DD, today in UTC when empty)
// and recomputes its streaks. Checking in twice on the same date is a no-op.
func (s *Service) CheckIn(ctx context.Context, userID, id, date string) (*models.Habit, error) {
	if date == "" {
		date = s.now().UTC().Format(DateLayout)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, apperr.Malformed("date must be YYYY-MM-DD")
	}

	habit, err := s.habits.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Habit not found")
		}
		return nil, apperr.Internal("Failed to load habit", err)
	}

	dates, added := addDate([]string(habit.CompletedDates), date)
	if !added {
		return habit, nil
	}
	habit.CompletedDates = models.StringList(dates)
	habit.Streak, habit.LongestStreak = streaks(dates)

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, apperr.Internal("Failed to update habit", err)
	}
	return habit, nil
}
