package timeutil

import (
	"testing"
	"time"
)

func TestRemainingLabel(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"exact instant", now, "Lapsed"},
		{"past", now.Add(-time.Hour), "Lapsed"},
		{"one minute", now.Add(time.Minute), "1m"},
		{"under a minute", now.Add(30 * time.Second), "0m"},
		{"hours", now.Add(2*time.Hour + 5*time.Minute + 40*time.Second), "2h 5m"},
		{"twenty five hours", now.Add(25 * time.Hour), "1d 1h 0m"},
		{"days", now.Add(3*day + 4*time.Hour + 7*time.Minute), "3d 4h 7m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemainingLabel(tt.at, now); got != tt.want {
				t.Errorf("RemainingLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsLapsed(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.Local)

	if IsLapsed(now, now) {
		t.Error("the current instant is not lapsed")
	}
	if !IsLapsed(now.Add(-time.Millisecond), now) {
		t.Error("one millisecond ago should be lapsed")
	}
	if IsLapsed(now.Add(time.Minute), now) {
		t.Error("the future is not lapsed")
	}
}

func TestFormatForDisplay(t *testing.T) {
	at := time.Date(2025, 1, 15, 14, 5, 0, 0, time.Local)
	if got, want := FormatForDisplay(at), "Wed, Jan 15, 2025, 02:05 PM"; got != want {
		t.Errorf("FormatForDisplay() = %q, want %q", got, want)
	}
}

func TestParseLocal(t *testing.T) {
	want := time.Date(2025, 1, 15, 9, 45, 0, 0, time.Local)

	got, err := ParseLocal("2025-01-15", "09:45")
	if err != nil {
		t.Fatalf("ParseLocal: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = ParseLocal("2025-01-15T09:45", "")
	if err != nil {
		t.Fatalf("ParseLocal combined: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("combined got %v, want %v", got, want)
	}

	if _, err := ParseLocal("15/01/2025", "09:45"); err == nil {
		t.Error("expected an error for a malformed date")
	}
}
