package analytics

import (
	"strings"
	"time"

	"cardguard/internal/errors"
)

type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
	WindowAll   Window = "all"
)

// timelineDays bounds the timeline of the unbounded window.
const timelineDays = 7

// ParseWindow accepts the window names case-insensitively. Empty means all.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowAll, nil
	case WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return w, nil
	}
	return "", errors.NewValidationError("invalid request: window",
		map[string]string{"window": "must be one of: day week month year all"})
}

// Since returns the inclusive lower bound of the window, or the zero time
// for the unbounded window.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return now.Add(-24 * time.Hour)
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	case WindowYear:
		return now.AddDate(-1, 0, 0)
	}
	return time.Time{}
}
