// Package scheduler maps reminders to pending one-shot timers.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/noahxzhu/remindme/internal/clock"
	"github.com/noahxzhu/remindme/internal/model"
)

// FireFunc raises the alarm for a reminder.
type FireFunc func(r model.Reminder)

// Lookup returns the current state of a reminder at fire time.
type Lookup interface {
	Get(id string) (model.Reminder, bool)
}

type pending struct {
	timer clock.Timer
	at    time.Time
}

// Scheduler holds at most one pending timer per reminder id. Scheduling an id
// that already has a timer replaces it; Cancel always wins over an earlier
// Schedule.
type Scheduler struct {
	clock  clock.Clock
	fire   FireFunc
	lookup Lookup
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*pending
}

// New creates a Scheduler. lookup may be nil, in which case the reminder
// captured at Schedule time is re-checked instead.
func New(clk clock.Clock, fire FireFunc, lookup Lookup, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:  clk,
		fire:   fire,
		lookup: lookup,
		logger: logger,
		timers: make(map[string]*pending),
	}
}

// Schedule arms an alarm for r. Completed reminders are ignored. A reminder
// whose time has already come fires immediately, on the caller's goroutine.
func (s *Scheduler) Schedule(r model.Reminder) {
	if r.Completed {
		return
	}

	s.mu.Lock()
	s.cancelLocked(r.ID)

	delay := r.ScheduledAt.Sub(s.clock.Now())
	if delay <= 0 {
		s.mu.Unlock()
		s.logger.Info("Reminder already due, firing now", "id", r.ID, "title", r.Title, "late", -delay)
		s.fire(r)
		return
	}

	p := &pending{at: r.ScheduledAt}
	p.timer = s.clock.AfterFunc(delay, func() { s.onTimer(r, p) })
	s.timers[r.ID] = p
	s.mu.Unlock()

	s.logger.Debug("Alarm scheduled", "id", r.ID, "in", delay, "at", r.ScheduledAt.Format("2006-01-02 15:04:05"))
}

// Cancel drops the pending timer for id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLocked(id) {
		s.logger.Debug("Alarm cancelled", "id", id)
	}
}

func (s *Scheduler) cancelLocked(id string) bool {
	p, ok := s.timers[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.timers, id)
	return true
}

func (s *Scheduler) onTimer(r model.Reminder, p *pending) {
	s.mu.Lock()
	if s.timers[r.ID] != p {
		// Superseded or cancelled after the timer had already started.
		s.mu.Unlock()
		return
	}
	delete(s.timers, r.ID)
	s.mu.Unlock()

	current := r
	if s.lookup != nil {
		var ok bool
		current, ok = s.lookup.Get(r.ID)
		if !ok {
			s.logger.Debug("Suppressing alarm for deleted reminder", "id", r.ID)
			return
		}
	}
	if current.Completed {
		s.logger.Debug("Suppressing alarm for completed reminder", "id", r.ID)
		return
	}

	s.logger.Info("Reminder due", "id", current.ID, "title", current.Title)
	s.fire(current)
}

// Pending reports when the timer for id is due.
func (s *Scheduler) Pending(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[id]
	if !ok {
		return time.Time{}, false
	}
	return p.at, true
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.cancelLocked(id)
	}
}
