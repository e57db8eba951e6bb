// Package repository declares the storage interfaces the services depend on.
//
// Services receive these interfaces, never the concrete sqlite.DB — tests
// substitute in-memory fakes and the storage engine stays swappable from one
// line in server.go.
package repository

import (
	"context"
	"time"

	"github.com/YashchenkoBV/gogitracker/internal/model"
)

// UserRepository reads and writes account records.
type UserRepository interface {
	// CreateUser inserts a new user and fills in the generated ID.
	// A duplicate username surfaces as apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	// GetUserByUsername is a case-sensitive exact match.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdateGitHubCredentials overwrites the stored OAuth app credentials.
	UpdateGitHubCredentials(ctx context.Context, userID int64, clientID, clientSecret string) error
	// UpdateGitHubToken overwrites the stored OAuth access token.
	UpdateGitHubToken(ctx context.Context, userID int64, token string) error
}

// TaskRepository reads and writes task records. Every method is scoped to an
// owning user — there is no way to reach another user's rows through this
// interface.
type TaskRepository interface {
	// CreateTask inserts a task and fills in the generated ID.
	CreateTask(ctx context.Context, task *model.Task) error
	// ListTasksByDate returns the user's tasks on an exact date with an exact
	// status, ordered by id ascending (insertion order).
	ListTasksByDate(ctx context.Context, userID int64, date time.Time, status model.TaskStatus) ([]model.Task, error)
	// MarkTaskDone sets status to Done for the user's task with the given id.
	// apperror.ErrNotFound if the user owns no such task. Re-marking a Done
	// task succeeds (the transition is idempotent).
	MarkTaskDone(ctx context.Context, userID, taskID int64) error
	// ListTasksByStatus returns all the user's tasks with the given status,
	// ordered by date then id ascending. The index page groups these onto
	// the calendar grid.
	ListTasksByStatus(ctx context.Context, userID int64, status model.TaskStatus) ([]model.Task, error)
	// ListUpcomingTasks returns in-progress tasks dated asOf or later,
	// ordered by date ascending, capped at limit.
	ListUpcomingTasks(ctx context.Context, userID int64, asOf time.Time, limit int) ([]model.Task, error)
	// ListDoneTasks returns done tasks ordered by date descending then id
	// descending — most recently completed first.
	ListDoneTasks(ctx context.Context, userID int64) ([]model.Task, error)
}
