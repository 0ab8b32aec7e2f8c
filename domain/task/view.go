package task

import (
	"fmt"
	"strings"
)

// StatusFilter selects tasks by completion status.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

// ParseStatusFilter converts a raw filter value. The empty string means FilterAll.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
}

// Matches reports whether t passes the status filter.
func (f StatusFilter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Derive returns the tasks that pass the status filter and whose name contains
// the trimmed query, case-insensitively. Input order is preserved and the
// input slice is not modified.
func Derive(tasks []Task, query string, filter StatusFilter) []Task {
	q := strings.ToLower(strings.TrimSpace(query))

	view := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) {
			continue
		}
		view = append(view, t)
	}
	return view
}
