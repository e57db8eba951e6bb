package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"time"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/repository"
)

const (
	// MaxTaskTextLength caps task text at the column width.
	MaxTaskTextLength = 255
	// DefaultUpcomingLimit caps the upcoming sidebar.
	DefaultUpcomingLimit = 10
)

// TaskService handles the task workflow: create, list, and the one-way
// transition to Done.
type TaskService struct {
	tasks  repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		logger: logger,
	}
}

// Add validates and inserts a task for the user on the given date, starting
// In Progress.
func (s *TaskService) Add(ctx context.Context, userID int64, date time.Time, text string) (*model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("task", "task text cannot be empty")
	}
	if len(text) > MaxTaskTextLength {
		return nil, apperror.ValidationFailed("task",
			fmt.Sprintf("task text must be %d characters or less", MaxTaskTextLength))
	}

	task := &model.Task{
		UserID: userID,
		Date:   date,
		Text:   text,
		Status: model.StatusInProgress,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/task: creating task: %w", err)
	}

	s.logger.Info("task added",
		slog.Int64("taskID", task.ID),
		slog.Int64("userID", userID),
		slog.String("date", date.Format(model.DateOnly)),
	)

	return task, nil
}

// ListByDate returns the user's tasks on an exact date with an exact status.
func (s *TaskService) ListByDate(ctx context.Context, userID int64, date time.Time, status model.TaskStatus) ([]model.Task, error) {
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status", "unknown task status")
	}

	tasks, err := s.tasks.ListTasksByDate(ctx, userID, date, status)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/task: listing tasks: %w", err)
	}
	return tasks, nil
}

// MarkDone transitions the user's task to Done.
//
// The ownership check lives in the repository's UPDATE predicate: a task id
// owned by someone else is indistinguishable from a missing one — both are
// NotFound, so the caller learns nothing about other users' tasks. Calling
// this twice on the same task is fine; the second call is a successful no-op.
func (s *TaskService) MarkDone(ctx context.Context, userID, taskID int64) error {
	if err := s.tasks.MarkTaskDone(ctx, userID, taskID); err != nil {
		return err
	}

	s.logger.Info("task marked done",
		slog.Int64("taskID", taskID),
		slog.Int64("userID", userID),
	)
	return nil
}

// ListInProgress returns all the user's in-progress tasks, earliest first.
// The index page feeds these to the calendar grouping.
func (s *TaskService) ListInProgress(ctx context.Context, userID int64) ([]model.Task, error) {
	tasks, err := s.tasks.ListTasksByStatus(ctx, userID, model.StatusInProgress)
	if err != nil {
		s.logger.Error("failed to list in-progress tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/task: listing in-progress tasks: %w", err)
	}
	return tasks, nil
}

// ListUpcoming returns the user's in-progress tasks dated asOf or later,
// soonest first, capped at limit (DefaultUpcomingLimit when limit <= 0).
//
// DAYS-LEFT POLICY:
// DaysLeft = task date − asOf + 1. A task due on asOf itself reads "1 day
// left" — the current day counts as remaining time. The computation lives
// in exactly one place so the sidebar and anything else that shows a
// countdown can never disagree.
func (s *TaskService) ListUpcoming(ctx context.Context, userID int64, asOf time.Time, limit int) ([]model.UpcomingTask, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	tasks, err := s.tasks.ListUpcomingTasks(ctx, userID, asOf, limit)
	if err != nil {
		s.logger.Error("failed to list upcoming tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/task: listing upcoming tasks: %w", err)
	}

	asOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	upcoming := make([]model.UpcomingTask, 0, len(tasks))
	for _, t := range tasks {
		days := int(t.Date.Sub(asOfDay).Hours()/24) + 1
		upcoming = append(upcoming, model.UpcomingTask{Task: t, DaysLeft: days})
	}

	return upcoming, nil
}

// ListDoneRecent returns the user's done tasks, most recently completed
// first.
func (s *TaskService) ListDoneRecent(ctx context.Context, userID int64) ([]model.Task, error) {
	tasks, err := s.tasks.ListDoneTasks(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list done tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/task: listing done tasks: %w", err)
	}
	return tasks, nil
}
