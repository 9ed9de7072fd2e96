// Package timeutil holds the pure time helpers used by the list and the
// filter. Every function takes "now" explicitly; nothing is cached.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	day = 24 * time.Hour

	// LocalLayout is the HTML datetime-local format.
	LocalLayout   = "2006-01-02T15:04"
	dateLayout    = "2006-01-02"
	clockLayout   = "15:04"
	displayLayout = "Mon, Jan 2, 2006, 03:04 PM"
)

// IsLapsed reports whether at is strictly before now.
func IsLapsed(at, now time.Time) bool {
	return at.Before(now)
}

// RemainingLabel renders the time left until at, e.g. "1d 1h 0m", "2h 5m"
// or "3m". Zero or negative time left is "Lapsed".
func RemainingLabel(at, now time.Time) string {
	diff := at.Sub(now)
	if diff <= 0 {
		return "Lapsed"
	}

	days := int(diff / day)
	hours := int((diff % day) / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatForDisplay is presentation only.
func FormatForDisplay(at time.Time) string {
	return at.Local().Format(displayLayout)
}

// ParseLocal parses a form date ("2006-01-02") and time ("15:04") in the
// local zone. If clock is empty, date may carry both as "2006-01-02T15:04".
func ParseLocal(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if clock == "" {
		t, err := time.ParseInLocation(LocalLayout, date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date/time %q: %w", date, err)
		}
		return t, nil
	}

	t, err := time.ParseInLocation(dateLayout+"T"+clockLayout, date+"T"+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}
