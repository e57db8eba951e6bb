// Package calendar builds the month grid and the per-day task labels for the
// index page.
//
// Everything here is a pure function of its inputs: no clock reads, no
// storage, no locale state. The handlers decide "which month" and "which
// tasks"; this package only arranges them.
package calendar

import (
	"time"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/model"
)

// maxLabelRunes is the display length a task label is cut to in a calendar
// cell. Truncation is display-only; the full text stays in storage and on
// the day's task page.
const maxLabelRunes = 10

// Week is one calendar row: seven day numbers, with 0 marking cells that
// belong to the adjacent month.
type Week [7]int

// MonthGrid returns the weeks of a month as rows of day numbers.
//
// firstWeekday picks which day starts each row (time.Monday gives the
// familiar Mon–Sun layout). Leading cells before the 1st and trailing cells
// after the last day are zero-filled, so every month comes out as complete
// rows of seven.
//
// month outside 1..12 is a caller error, not something to normalize —
// the URL parser upstream should have rejected it.
func MonthGrid(year, month int, firstWeekday time.Weekday) ([]Week, error) {
	if month < 1 || month > 12 {
		return nil, apperror.ValidationFailed("month", "month must be between 1 and 12")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one.
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

	// How many zero cells pad the first row.
	lead := (int(first.Weekday()) - int(firstWeekday) + 7) % 7

	var (
		weeks []Week
		week  Week
		col   = lead
	)
	for day := 1; day <= daysInMonth; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = Week{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}

	return weeks, nil
}

// GroupTasksByDay maps each task's date (YYYY-MM-DD) to a short display
// label, keeping input order and capping each day at maxPerDay labels.
// Overflow beyond the cap is dropped silently — the cell links to the full
// day page, so nothing is lost, only not previewed.
func GroupTasksByDay(tasks []model.Task, maxPerDay int) map[string][]string {
	byDay := make(map[string][]string)
	for _, t := range tasks {
		key := t.Date.Format(model.DateOnly)
		if len(byDay[key]) >= maxPerDay {
			continue
		}
		byDay[key] = append(byDay[key], truncateLabel(t.Text))
	}
	return byDay
}

// truncateLabel cuts text to maxLabelRunes runes plus "..." when longer.
// Counting runes, not bytes, keeps multi-byte text from being split mid
// character.
func truncateLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= maxLabelRunes {
		return text
	}
	return string(runes[:maxLabelRunes]) + "..."
}
