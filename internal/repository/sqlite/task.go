package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/repository"
)

// compile-time check that *DB implements repository.TaskRepository
var _ repository.TaskRepository = (*DB)(nil)

// CreateTask inserts a task and fills in the generated id.
//
// The date is stored as an ISO YYYY-MM-DD string. Formatting happens here
// and parsing happens in scanTask — the rest of the codebase only ever sees
// time.Time values pinned to midnight UTC.
func (db *DB) CreateTask(ctx context.Context, task *model.Task) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (user_id, date, task_text, status)
		 VALUES (?, ?, ?, ?)`,
		task.UserID,
		task.Date.Format(model.DateOnly),
		task.Text,
		string(task.Status),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new task id: %w", err)
	}
	task.ID = id

	return nil
}

// ListTasksByDate returns the user's tasks on an exact date with an exact
// status, in insertion order.
func (db *DB) ListTasksByDate(ctx context.Context, userID int64, date time.Time, status model.TaskStatus) ([]model.Task, error) {
	return db.queryTasks(ctx,
		`SELECT id, user_id, date, task_text, status
		 FROM tasks
		 WHERE user_id = ? AND date = ? AND status = ?
		 ORDER BY id ASC`,
		userID, date.Format(model.DateOnly), string(status),
	)
}

// MarkTaskDone sets status to Done for the user's task with the given id.
//
// OWNERSHIP IS IN THE WHERE CLAUSE:
// The query matches on (id, user_id) together, so a task id belonging to a
// different user affects zero rows and comes back as NotFound — there is no
// code path where one user mutates another's task. Status is not part of the
// predicate, so marking an already-Done task "affects" the row again and
// succeeds: the operation is idempotent by construction.
func (db *DB) MarkTaskDone(ctx context.Context, userID, taskID int64) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE id = ? AND user_id = ?`,
		string(model.StatusDone), taskID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking task %d done: %w", taskID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", taskID)
	}

	return nil
}

// ListTasksByStatus returns all the user's tasks with the given status,
// earliest first.
func (db *DB) ListTasksByStatus(ctx context.Context, userID int64, status model.TaskStatus) ([]model.Task, error) {
	return db.queryTasks(ctx,
		`SELECT id, user_id, date, task_text, status
		 FROM tasks
		 WHERE user_id = ? AND status = ?
		 ORDER BY date ASC, id ASC`,
		userID, string(status),
	)
}

// ListUpcomingTasks returns in-progress tasks dated asOf or later, soonest
// first, capped at limit. The date comparison is a string comparison — ISO
// dates order lexicographically the same as chronologically.
func (db *DB) ListUpcomingTasks(ctx context.Context, userID int64, asOf time.Time, limit int) ([]model.Task, error) {
	return db.queryTasks(ctx,
		`SELECT id, user_id, date, task_text, status
		 FROM tasks
		 WHERE user_id = ? AND date >= ? AND status = ?
		 ORDER BY date ASC
		 LIMIT ?`,
		userID, asOf.Format(model.DateOnly), string(model.StatusInProgress), limit,
	)
}

// ListDoneTasks returns the user's done tasks, most recently completed first
// (date descending, then id descending as the tie-break within a day).
func (db *DB) ListDoneTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	return db.queryTasks(ctx,
		`SELECT id, user_id, date, task_text, status
		 FROM tasks
		 WHERE user_id = ? AND status = ?
		 ORDER BY date DESC, id DESC`,
		userID, string(model.StatusDone),
	)
}

// queryTasks runs a SELECT over the tasks table and scans all rows.
func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			t       model.Task
			dateStr string
			status  string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &dateStr, &t.Text, &status); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}

		t.Date, err = time.ParseInLocation(model.DateOnly, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing task date %q: %w", dateStr, err)
		}
		t.Status = model.TaskStatus(status)

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}
