// Package tasks implements owner-scoped task management.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
	"github.com/focusflow/focusapi/internal/telemetry"
)

const tracerName = "focusapi/services/tasks"

// Listing bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

const msgNotFound = "Task not found"

var (
	validPriorities = map[string]bool{
		models.PriorityLow: true, models.PriorityMedium: true,
		models.PriorityHigh: true, models.PriorityUrgent: true,
	}
	validStatuses = map[string]bool{
		models.TaskStatusPending: true, models.TaskStatusInProgress: true,
		models.TaskStatusCompleted: true, models.TaskStatusCancelled: true,
	}
)

// CreateInput describes a new task. Priority defaults to medium.
type CreateInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    *int       `json:"duration"`
	Priority    string     `json:"priority"`
	Category    *string    `json:"category"`
	Tags        []string   `json:"tags"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    *int       `json:"duration"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	Category    *string    `json:"category"`
	Tags        []string   `json:"tags"`
}

// Service manages a user's tasks.
type Service struct {
	tasks repository.TaskRepository
	now   func() time.Time
}

// NewService creates a task service.
func NewService(tasks repository.TaskRepository) *Service {
	return &Service{tasks: tasks, now: time.Now}
}

// WithClock overrides the clock used for completion timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// List returns the user's tasks matching filter.
func (s *Service) List(ctx context.Context, userID string, filter repository.TaskFilter) ([]models.Task, error) {
	if filter.Status != "" && !validStatuses[filter.Status] {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid status: %s", filter.Status))
	}
	if filter.Priority != "" && !validPriorities[filter.Priority] {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid priority: %s", filter.Priority))
	}
	if filter.Skip < 0 {
		return nil, apperr.Malformed("skip must be non-negative")
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultLimit
	case filter.Limit < 0 || filter.Limit > MaxLimit:
		return nil, apperr.Malformed(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, apperr.Internal("Failed to list tasks", err)
	}
	return tasks, nil
}

// Create stores a new pending task.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Task, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "tasks.Create",
		attribute.String(telemetry.AttrUserID, userID),
	)
	defer span.End()

	task, err := newTask(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to create task", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrTaskID, task.ID))
	return task, nil
}

// CreateBatch stores all tasks atomically.
func (s *Service) CreateBatch(ctx context.Context, userID string, inputs []CreateInput) ([]*models.Task, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "tasks.CreateBatch",
		attribute.String(telemetry.AttrUserID, userID),
		attribute.Int(telemetry.AttrTaskCount, len(inputs)),
	)
	defer span.End()

	if len(inputs) == 0 {
		return nil, apperr.Malformed("At least one task is required")
	}
	batch := make([]*models.Task, 0, len(inputs))
	for i, in := range inputs {
		task, err := newTask(userID, in)
		if err != nil {
			return nil, apperr.Malformed(fmt.Sprintf("task %d: %s", i, apperr.MessageOf(err)))
		}
		batch = append(batch, task)
	}

	if err := s.tasks.CreateBatch(ctx, batch); err != nil {
		telemetry.RecordError(span, err)
		return nil, apperr.Internal("Failed to create tasks", err)
	}
	return batch, nil
}

// Get returns one task owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err, "Failed to load task")
	}
	return task, nil
}

// Update applies a partial update. Moving to completed stamps completed_at;
// any other status clears it.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Task, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "tasks.Update",
		attribute.String(telemetry.AttrUserID, userID),
		attribute.String(telemetry.AttrTaskID, id),
	)
	defer span.End()

	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err, "Failed to load task")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Malformed("Title is required")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.StartTime != nil {
		task.StartTime = utcPtr(in.StartTime)
	}
	if in.EndTime != nil {
		task.EndTime = utcPtr(in.EndTime)
	}
	if in.Duration != nil {
		if *in.Duration < 0 {
			return nil, apperr.Malformed("Duration must be non-negative")
		}
		task.Duration = in.Duration
	}
	if in.Priority != nil {
		if !validPriorities[*in.Priority] {
			return nil, apperr.Malformed(fmt.Sprintf("Invalid priority: %s", *in.Priority))
		}
		task.Priority = *in.Priority
	}
	if in.Category != nil {
		task.Category = in.Category
	}
	if in.Tags != nil {
		task.Tags = models.StringList(in.Tags)
	}
	if in.Status != nil {
		if !validStatuses[*in.Status] {
			return nil, apperr.Malformed(fmt.Sprintf("Invalid status: %s", *in.Status))
		}
		task.Status = *in.Status
		if task.Status == models.TaskStatusCompleted {
			now := s.now().UTC()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	if err := checkWindow(task.StartTime, task.EndTime); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		telemetry.RecordError(span, err)
		return nil, mapRepoErr(err, "Failed to update task")
	}
	return task, nil
}

// Delete removes a task owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return mapRepoErr(err, "Failed to delete task")
	}
	return nil
}

func newTask(userID string, in CreateInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, apperr.Malformed("Title is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriorities[priority] {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid priority: %s", priority))
	}
	if in.Duration != nil && *in.Duration < 0 {
		return nil, apperr.Malformed("Duration must be non-negative")
	}
	if err := checkWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	return &models.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   utcPtr(in.StartTime),
		EndTime:     utcPtr(in.EndTime),
		Duration:    in.Duration,
		Priority:    priority,
		Status:      models.TaskStatusPending,
		Category:    in.Category,
		Tags:        models.StringList(in.Tags),
	}, nil
}

func checkWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperr.Malformed("end_time must not precede start_time")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func mapRepoErr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}
	return apperr.Internal(msg, err)
}
