package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidReminder is wrapped by every validation failure.
var ErrInvalidReminder = errors.New("invalid reminder")

type Category string

const (
	CategoryPersonal  Category = "personal"
	CategoryWork      Category = "work"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategoryOther     Category = "other"
)

var Categories = []Category{CategoryPersonal, CategoryWork, CategoryHealth, CategoryEducation, CategoryOther}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities for sorting. Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Ringtone string

const (
	RingtoneClassic Ringtone = "classic"
	RingtoneDigital Ringtone = "digital"
	RingtoneChime   Ringtone = "chime"
	RingtoneUrgent  Ringtone = "urgent"
	RingtoneGentle  Ringtone = "gentle"
)

var Ringtones = []Ringtone{RingtoneClassic, RingtoneDigital, RingtoneChime, RingtoneUrgent, RingtoneGentle}

// Label is the capitalized name shown in alerts, e.g. "Chime".
func (r Ringtone) Label() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Known reports whether r is one of the five ringtones.
func (r Ringtone) Known() bool {
	for _, k := range Ringtones {
		if r == k {
			return true
		}
	}
	return false
}

type Reminder struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	Ringtone    Ringtone  `json:"ringtone,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input is what a user submits when creating or editing a reminder.
type Input struct {
	Title       string
	Description string
	ScheduledAt time.Time
	Category    Category
	Priority    Priority
	Ringtone    Ringtone
}

// Normalize trims text fields and fills the form defaults.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	in.Priority = Priority(strings.ToLower(strings.TrimSpace(string(in.Priority))))
	in.Ringtone = Ringtone(strings.ToLower(strings.TrimSpace(string(in.Ringtone))))
	if in.Category == "" {
		in.Category = CategoryPersonal
	}
	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	if in.Ringtone == "" {
		in.Ringtone = RingtoneClassic
	}
	return in
}

func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidReminder)
	}
	if in.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled time is required", ErrInvalidReminder)
	}
	if _, err := ParseCategory(string(in.Category)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(in.Priority)); err != nil {
		return err
	}
	if _, err := ParseRingtone(string(in.Ringtone)); err != nil {
		return err
	}
	return nil
}

// Apply copies the editable fields of in onto r.
func (in Input) Apply(r *Reminder) {
	r.Title = in.Title
	r.Description = in.Description
	r.ScheduledAt = in.ScheduledAt
	r.Category = in.Category
	r.Priority = in.Priority
	r.Ringtone = in.Ringtone
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Categories {
		if c == k {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidReminder, s)
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Priorities {
		if p == k {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidReminder, s)
}

func ParseRingtone(s string) (Ringtone, error) {
	r := Ringtone(strings.ToLower(strings.TrimSpace(s)))
	if r.Known() {
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown ringtone %q", ErrInvalidReminder, s)
}
