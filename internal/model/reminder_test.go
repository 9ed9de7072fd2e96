package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	in := Input{Title: "  Call mom ", ScheduledAt: time.Now()}.Normalize()
	if in.Title != "Call mom" {
		t.Errorf("title = %q", in.Title)
	}
	if in.Category != CategoryPersonal || in.Priority != PriorityLow || in.Ringtone != RingtoneClassic {
		t.Errorf("defaults = %s/%s/%s", in.Category, in.Priority, in.Ringtone)
	}

	in = Input{Title: "x", Category: " Work", Priority: "HIGH", Ringtone: "Chime"}.Normalize()
	if in.Category != CategoryWork || in.Priority != PriorityHigh || in.Ringtone != RingtoneChime {
		t.Errorf("case folding = %s/%s/%s", in.Category, in.Priority, in.Ringtone)
	}
}

func TestValidate(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"ok", Input{Title: "Tea", ScheduledAt: at}, ""},
		{"blank title", Input{Title: "   ", ScheduledAt: at}, "title"},
		{"no time", Input{Title: "Tea"}, "scheduled time"},
		{"bad category", Input{Title: "Tea", ScheduledAt: at, Category: "hobby"}, "category"},
		{"bad priority", Input{Title: "Tea", ScheduledAt: at, Priority: "urgent"}, "priority"},
		{"bad ringtone", Input{Title: "Tea", ScheduledAt: at, Ringtone: "kazoo"}, "ringtone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidReminder) || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityHigh.Rank() > PriorityMedium.Rank() && PriorityMedium.Rank() > PriorityLow.Rank()) {
		t.Error("priority ranks out of order")
	}
	if Priority("bogus").Rank() >= PriorityLow.Rank() {
		t.Error("unknown priority should rank below low")
	}
}

func TestRingtoneLabel(t *testing.T) {
	if got := RingtoneChime.Label(); got != "Chime" {
		t.Errorf("Label = %q", got)
	}
	if Ringtone("").Known() || !RingtoneGentle.Known() {
		t.Error("Known mismatch")
	}
}

func TestReminderJSONOmitsMissingRingtone(t *testing.T) {
	data, err := json.Marshal(Reminder{ID: "1", Title: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "ringtone") {
		t.Errorf("empty ringtone serialized: %s", data)
	}

	var r Reminder
	if err := json.Unmarshal([]byte(`{"id":"2","title":"legacy","priority":"high"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Ringtone != "" || r.Priority != PriorityHigh {
		t.Errorf("legacy decode = %+v", r)
	}
}
