package alarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/noahxzhu/remindme/internal/clock"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/timeutil"
)

// Alarm is one ringing alert.
type Alarm struct {
	presenter *Presenter
	reminder  model.Reminder
	view      View
	overlay   Overlay
	cancel    context.CancelFunc

	mu        sync.Mutex
	stopped   bool
	plays     int
	toneTimer clock.Timer
	autoTimer clock.Timer
	handle    Handle

	once sync.Once
}

func (a *Alarm) Reminder() model.Reminder { return a.reminder }

func (a *Alarm) View() View { return a.view }

// Plays reports how many times the ringtone has played.
func (a *Alarm) Plays() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plays
}

// Dismissed reports whether the alarm has been dismissed.
func (a *Alarm) Dismissed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// Dismiss silences the alarm, closes its notification and overlay. Only the
// first call does anything; it returns true for that call.
func (a *Alarm) Dismiss(reason DismissReason) bool {
	done := false
	a.once.Do(func() {
		done = true

		a.mu.Lock()
		a.stopped = true
		if a.toneTimer != nil {
			a.toneTimer.Stop()
		}
		if a.autoTimer != nil {
			a.autoTimer.Stop()
		}
		h := a.handle
		a.handle = nil
		a.mu.Unlock()

		if a.cancel != nil {
			a.cancel()
		}
		p := a.presenter
		if h != nil {
			if err := h.Close(); err != nil {
				p.logger.Warn("Failed to close notification", "id", a.reminder.ID, "error", err)
			}
		}
		if a.overlay != nil {
			a.overlay.Close(a.reminder.ID)
		}
		p.release(a)
		p.logger.Info("Alarm dismissed", "id", a.reminder.ID, "reason", reason)
	})
	return done
}

func (a *Alarm) startAudio() {
	if a.presenter.audio == nil {
		return
	}
	a.tone()
}

// tone plays once and re-arms itself until the repeat budget runs out.
func (a *Alarm) tone() {
	p := a.presenter

	a.mu.Lock()
	if a.stopped || a.plays >= p.opts.MaxRepeats {
		a.mu.Unlock()
		return
	}
	a.plays++
	n := a.plays
	a.mu.Unlock()

	if err := p.audio.PlayTone(a.reminder.Ringtone); err != nil && n == 1 {
		p.logger.Warn("Ringtone playback failed", "id", a.reminder.ID, "ringtone", a.reminder.Ringtone, "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped || a.plays >= p.opts.MaxRepeats {
		return
	}
	a.toneTimer = p.clock.AfterFunc(p.opts.RepeatInterval, a.tone)
}

// openOverlay shows the modal unless the alarm was already dismissed. It runs
// under a.mu so a concurrent Dismiss closes the overlay after it opened.
func (a *Alarm) openOverlay() {
	if a.overlay == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.overlay.Open(a.view, func(reason DismissReason) { a.Dismiss(reason) })
}

func (a *Alarm) notify(ctx context.Context, n Notifier) {
	r := a.reminder
	h, err := n.Show(ctx, Notification{
		Title:              "REMINDER ALERT: " + r.Title,
		Body:               notificationBody(r),
		Tag:                r.ID,
		Ringtone:           r.Ringtone,
		RequireInteraction: true,
		OnClick:            func() { a.Dismiss(DismissNotification) },
	})
	if err != nil {
		if ctx.Err() == nil {
			a.presenter.logger.Warn("System notification failed, continuing in-app only", "id", r.ID, "error", err)
		}
		return
	}
	if h != nil {
		a.setHandle(h)
	}
}

func (a *Alarm) armAutoDismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.autoTimer = a.presenter.clock.AfterFunc(a.presenter.opts.AutoDismiss, func() {
		a.Dismiss(DismissTimeout)
	})
}

func (a *Alarm) setHandle(h Handle) {
	a.mu.Lock()
	if !a.stopped {
		a.handle = h
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	// Dismissed while the notification was being shown.
	if err := h.Close(); err != nil {
		a.presenter.logger.Warn("Failed to close notification", "id", a.reminder.ID, "error", err)
	}
}

func notificationBody(r model.Reminder) string {
	return fmt.Sprintf("%s\n\nTime: %s\nRingtone: %s",
		r.Description, timeutil.FormatForDisplay(r.ScheduledAt), r.Ringtone.Label())
}
