package model

import "time"

// DateOnly is the calendar-date layout used everywhere a date crosses a
// boundary: the tasks table, URL segments, form fields, and template keys.
// Tasks are bound to a day, not an instant, so we never store a time of day.
const DateOnly = "2006-01-02"

// TaskStatus is the two-value task state.
//
// WHY A NAMED STRING TYPE?
// The values are stored verbatim in the status column and rendered on pages,
// so a string representation is the natural fit. The named type still gives us
// compile-time intent: a function taking TaskStatus can't silently be handed
// an arbitrary string without a conversion the reader can see.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the two known statuses.
// The enum is closed — anything else is a caller bug or a tampered form.
func (s TaskStatus) Valid() bool {
	return s == StatusInProgress || s == StatusDone
}

// Task is a single to-do item pinned to a calendar date.
//
// A task always belongs to exactly one user (UserID is NOT NULL in the
// schema). The only mutation the application exposes is the one-way status
// transition In Progress → Done; tasks are never deleted and never move back.
type Task struct {
	ID     int64      `json:"id"`
	UserID int64      `json:"userId"`
	Date   time.Time  `json:"date"` // calendar date; time-of-day is always midnight UTC
	Text   string     `json:"text"`
	Status TaskStatus `json:"status"`
}

// UpcomingTask pairs a task with its computed days-left value for the
// "upcoming" sidebar. DaysLeft = task date − as-of date + 1, so a task due
// today shows as "1 day left" rather than zero.
type UpcomingTask struct {
	Task
	DaysLeft int `json:"daysLeft"`
}
