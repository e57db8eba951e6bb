package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/auth"
	"github.com/YashchenkoBV/gogitracker/internal/calendar"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/service"
)

// maxTasksPerCell caps how many task labels a calendar cell previews.
const maxTasksPerCell = 3

// TaskHandler serves the calendar index, the per-day task page, and the
// mark-finished action.
type TaskHandler struct {
	render *Renderer
	tasks  *service.TaskService
	users  *service.AuthService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(render *Renderer, tasks *service.TaskService, users *service.AuthService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		render: render,
		tasks:  tasks,
		users:  users,
		logger: logger,
	}
}

// HandleIndex serves the calendar page.
//
// HTTP: GET /?year=&month=&show_done=
// Anonymous visitors are redirected to the welcome page (this route runs
// under OptionalSession, so "anonymous" just means no user id in context).
//
// The calendar cells are fed from the in-progress list by default, or from
// the done list when show_done=true; the upcoming sidebar is shown either
// way.
func (h *TaskHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/welcome", http.StatusFound)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		// Valid cookie but no such row — treat as logged out.
		auth.ClearSessionCookie(w)
		http.Redirect(w, r, "/welcome", http.StatusFound)
		return
	}

	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	showDone := r.URL.Query().Get("show_done") == "true"

	weeks, err := calendar.MonthGrid(year, month, time.Monday)
	if err != nil {
		h.render.RenderError(w, err)
		return
	}

	var tasks []model.Task
	if showDone {
		tasks, err = h.tasks.ListDoneRecent(r.Context(), userID)
	} else {
		tasks, err = h.tasks.ListInProgress(r.Context(), userID)
	}
	if err != nil {
		h.render.RenderError(w, err)
		return
	}

	upcoming, err := h.tasks.ListUpcoming(r.Context(), userID, now, service.DefaultUpcomingLimit)
	if err != nil {
		h.render.RenderError(w, err)
		return
	}

	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevYear, prevMonth = year-1, 12
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}

	h.render.Render(w, http.StatusOK, "index", map[string]any{
		"Username":   user.Username,
		"Year":       year,
		"Month":      month,
		"MonthName":  time.Month(month).String(),
		"Weeks":      weeks,
		"TasksByDay": calendar.GroupTasksByDay(tasks, maxTasksPerCell),
		"Tasks":      tasks,
		"Upcoming":   upcoming,
		"ShowDone":   showDone,
		"PrevYear":   prevYear,
		"PrevMonth":  prevMonth,
		"NextYear":   nextYear,
		"NextMonth":  nextMonth,
	})
}

// HandleTasksDay serves and mutates the task lists for one date.
//
// HTTP: GET  /tasks/{year}/{month}/{day}           → the day's lists
// HTTP: POST /tasks/{year}/{month}/{day} task=...   → add a task, 302 self
// HTTP: POST /tasks/{year}/{month}/{day} task_id=...→ mark done, 302 self
//
// The two POST shapes share one endpoint and are distinguished by which
// form field is present.
func (h *TaskHandler) HandleTasksDay(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	date, err := pathDate(r)
	if err != nil {
		h.render.RenderError(w, err)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.renderTasksDay(w, r, userID, date, http.StatusBadRequest, "Could not read the submitted form.")
			return
		}

		switch {
		case r.PostForm.Has("task"):
			if _, err := h.tasks.Add(r.Context(), userID, date, r.PostFormValue("task")); err != nil {
				if errors.Is(err, apperror.ErrValidation) {
					h.renderTasksDay(w, r, userID, date, http.StatusBadRequest, userMessage(err))
					return
				}
				h.render.RenderError(w, err)
				return
			}

		case r.PostForm.Has("task_id"):
			taskID, convErr := strconv.ParseInt(r.PostFormValue("task_id"), 10, 64)
			if convErr != nil {
				h.renderTasksDay(w, r, userID, date, http.StatusBadRequest, "Task not found.")
				return
			}
			if err := h.tasks.MarkDone(r.Context(), userID, taskID); err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					h.renderTasksDay(w, r, userID, date, http.StatusBadRequest, "Task not found.")
					return
				}
				h.render.RenderError(w, err)
				return
			}
		}

		// Post/redirect/get: a refresh after the redirect re-reads, not
		// re-submits.
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
		return
	}

	h.renderTasksDay(w, r, userID, date, http.StatusOK, "")
}

// renderTasksDay fetches both status lists for the date and renders the page.
func (h *TaskHandler) renderTasksDay(w http.ResponseWriter, r *http.Request, userID int64, date time.Time, status int, errMsg string) {
	inProgress, err := h.tasks.ListByDate(r.Context(), userID, date, model.StatusInProgress)
	if err != nil {
		h.render.RenderError(w, err)
		return
	}
	done, err := h.tasks.ListByDate(r.Context(), userID, date, model.StatusDone)
	if err != nil {
		h.render.RenderError(w, err)
		return
	}

	h.render.Render(w, status, "tasks", map[string]any{
		"Year":         date.Year(),
		"Month":        int(date.Month()),
		"Day":          date.Day(),
		"DateLabel":    date.Format("January 2, 2006"),
		"InProgress":   inProgress,
		"Done":         done,
		"ErrorMessage": errMsg,
	})
}

// HandleMarkFinished marks a task done from the index page.
//
// HTTP: POST /mark_finished?year=&month=&show_done=  (form: task_id)
//
// A task id the caller doesn't own is a SILENT no-op — the redirect happens
// either way and nothing confirms whether the id existed. The year/month/
// show_done query values ride along so the browser lands back on the same
// calendar view.
func (h *TaskHandler) HandleMarkFinished(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	target := "/"
	if q := r.URL.RawQuery; q != "" {
		target += "?" + q
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	taskID, err := strconv.ParseInt(r.PostFormValue("task_id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	if err := h.tasks.MarkDone(r.Context(), userID, taskID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			h.render.RenderError(w, err)
			return
		}
		// Not found / not owned: fall through to the redirect.
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// pathDate assembles and validates the {year}/{month}/{day} URL segments.
// time.Parse does the range checking — month 13 or February 30 fail there.
func pathDate(r *http.Request) (time.Time, error) {
	year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
	month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
	day, err3 := strconv.Atoi(chi.URLParam(r, "day"))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, apperror.ValidationFailed("date", "the date in the address is not valid")
	}

	date, err := time.ParseInLocation(model.DateOnly,
		fmt.Sprintf("%04d-%02d-%02d", year, month, day), time.UTC)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date", "the date in the address is not valid")
	}
	return date, nil
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// userMessage extracts the user-safe message from a domain error.
func userMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An internal error occurred."
}
