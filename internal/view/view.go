// Package view derives the filtered, sorted reminder list shown to the user.
package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/timeutil"
)

type Status string

const (
	StatusAll       Status = ""
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	// StatusOverdue is the canonical name; "lapsed" parses to it.
	StatusOverdue Status = "overdue"
)

var Statuses = []Status{StatusAll, StatusActive, StatusCompleted, StatusOverdue}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "active":
		return StatusActive, nil
	case "completed":
		return StatusCompleted, nil
	case "overdue", "lapsed":
		return StatusOverdue, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Filter holds the list criteria. Zero values match everything.
type Filter struct {
	Search   string
	Category model.Category
	Priority model.Priority
	Status   Status
}

// Apply returns the reminders matching f, highest priority first and then
// soonest first. The input is not modified.
func Apply(reminders []model.Reminder, f Filter, now time.Time) []model.Reminder {
	search := strings.ToLower(f.Search)

	out := make([]model.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if matches(r, f, search, now) {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b model.Reminder) int {
		if d := b.Priority.Rank() - a.Priority.Rank(); d != 0 {
			return d
		}
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})
	return out
}

func matches(r model.Reminder, f Filter, search string, now time.Time) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(r.Title), search) &&
		!strings.Contains(strings.ToLower(r.Description), search) {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Priority != "" && r.Priority != f.Priority {
		return false
	}

	switch f.Status {
	case StatusActive:
		return !r.Completed
	case StatusCompleted:
		return r.Completed
	case StatusOverdue:
		return !r.Completed && timeutil.IsLapsed(r.ScheduledAt, now)
	}
	return true
}

// Stats are the header counters.
type Stats struct {
	Total     int
	Active    int
	Completed int
	Overdue   int
}

func Summarize(reminders []model.Reminder, now time.Time) Stats {
	st := Stats{Total: len(reminders)}
	for _, r := range reminders {
		if r.Completed {
			st.Completed++
			continue
		}
		st.Active++
		if timeutil.IsLapsed(r.ScheduledAt, now) {
			st.Overdue++
		}
	}
	return st
}
