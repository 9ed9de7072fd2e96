package alarm

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/noahxzhu/remindme/internal/clock"
	"github.com/noahxzhu/remindme/internal/model"
)

// Presenter raises alarms. Any of its collaborators may be nil; a missing
// channel is simply skipped.
type Presenter struct {
	clock    clock.Clock
	audio    AudioPlayer
	notifier Notifier
	overlay  Overlay
	opts     Options
	logger   *slog.Logger

	notifying sync.WaitGroup

	// raising serializes Present so a superseded alarm is torn down before
	// its successor opens the overlay.
	raising sync.Mutex

	mu         sync.Mutex
	permission Permission
	active     map[string]*Alarm
}

type Config struct {
	Clock    clock.Clock
	Audio    AudioPlayer
	Notifier Notifier
	Overlay  Overlay
	Options  Options
	Logger   *slog.Logger
}

func NewPresenter(cfg Config) *Presenter {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Presenter{
		clock:      cfg.Clock,
		audio:      cfg.Audio,
		notifier:   cfg.Notifier,
		overlay:    cfg.Overlay,
		opts:       cfg.Options.withDefaults(),
		logger:     cfg.Logger,
		permission: PermissionUnsupported,
		active:     make(map[string]*Alarm),
	}
}

// SetOverlay attaches the in-app overlay once the UI exists.
func (p *Presenter) SetOverlay(o Overlay) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overlay = o
}

// SetPermission records the notification permission; only a granted
// permission enables system notifications.
func (p *Presenter) SetPermission(perm Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permission = perm
}

func (p *Presenter) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// Present starts the alarm for r. A ringing alarm for the same reminder is
// dismissed first. The system notification is shown in the background, so
// Present never waits on the notifier.
func (p *Presenter) Present(r model.Reminder) *Alarm {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Alarm{
		presenter: p,
		reminder:  r,
		cancel:    cancel,
		view: View{
			ReminderID:    r.ID,
			Title:         r.Title,
			Description:   r.Description,
			ScheduledAt:   r.ScheduledAt,
			Ringtone:      r.Ringtone,
			RingtoneLabel: r.Ringtone.Label(),
			RaisedAt:      p.clock.Now(),
		},
	}

	p.raising.Lock()
	defer p.raising.Unlock()

	p.mu.Lock()
	prev := p.active[r.ID]
	p.active[r.ID] = a
	perm, notifier := p.permission, p.notifier
	a.overlay = p.overlay
	p.mu.Unlock()

	if prev != nil {
		prev.Dismiss(DismissSuperseded)
	}

	p.logger.Info("Alarm raised", "id", r.ID, "title", r.Title, "ringtone", r.Ringtone)

	a.startAudio()

	// Overlay first: a notification click may dismiss right away.
	a.openOverlay()

	if notifier != nil && perm == PermissionGranted {
		p.notifying.Add(1)
		go func() {
			defer p.notifying.Done()
			a.notify(ctx, notifier)
		}()
	}

	a.armAutoDismiss()
	return a
}

// Wait blocks until every system notification started by Present has been
// shown or has failed.
func (p *Presenter) Wait() {
	p.notifying.Wait()
}

// Active lists ringing alarms, oldest first.
func (p *Presenter) Active() []View {
	p.mu.Lock()
	defer p.mu.Unlock()
	views := make([]View, 0, len(p.active))
	for _, a := range p.active {
		views = append(views, a.view)
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].RaisedAt.Equal(views[j].RaisedAt) {
			return views[i].ReminderID < views[j].ReminderID
		}
		return views[i].RaisedAt.Before(views[j].RaisedAt)
	})
	return views
}

// Dismiss stops the alarm ringing for id. It reports whether one was active.
func (p *Presenter) Dismiss(id string, reason DismissReason) bool {
	p.mu.Lock()
	a := p.active[id]
	p.mu.Unlock()
	if a == nil {
		return false
	}
	return a.Dismiss(reason)
}

func (p *Presenter) DismissAll(reason DismissReason) {
	p.mu.Lock()
	alarms := make([]*Alarm, 0, len(p.active))
	for _, a := range p.active {
		alarms = append(alarms, a)
	}
	p.mu.Unlock()

	for _, a := range alarms {
		a.Dismiss(reason)
	}
}

func (p *Presenter) release(a *Alarm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active[a.reminder.ID] == a {
		delete(p.active, a.reminder.ID)
	}
}
