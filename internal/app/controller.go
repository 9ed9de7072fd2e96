// Package app wires the reminder store, the scheduler and the alarm
// presenter behind the operations the user interfaces call.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/clock"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/scheduler"
	"github.com/noahxzhu/remindme/internal/storage"
	"github.com/noahxzhu/remindme/internal/view"
)

// DeniedAdvisory is shown once when notification permission is refused.
const DeniedAdvisory = "Notification permission denied. You won't receive system alerts for your reminders; alarms will still ring in the app."

// Confirmation shown when notification permission is granted on request.
const (
	EnabledTitle  = "Notifications Enabled!"
	EnabledBody   = "You will now receive alarm-style alerts for your reminders."
	EnabledLinger = 3 * time.Second
)

type Deps struct {
	Store     *storage.Store
	Presenter *alarm.Presenter
	Notifier  alarm.Notifier
	Clock     clock.Clock
	Logger    *slog.Logger
	// NewID overrides id generation; tests use it for stable ids.
	NewID func() (string, error)
}

type Controller struct {
	store     *storage.Store
	presenter *alarm.Presenter
	notifier  alarm.Notifier
	scheduler *scheduler.Scheduler
	clock     clock.Clock
	logger    *slog.Logger
	newID     func() (string, error)

	mu         sync.Mutex
	filter     view.Filter
	advisory   string
	onAdvisory func(msg string)
	onChange   func()
}

func New(d Deps) *Controller {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.NewID == nil {
		d.NewID = newID
	}
	c := &Controller{
		store:     d.Store,
		presenter: d.Presenter,
		notifier:  d.Notifier,
		clock:     d.Clock,
		logger:    d.Logger,
		newID:     d.NewID,
	}
	c.scheduler = scheduler.New(d.Clock, c.fire, d.Store, d.Logger)
	return c
}

// newID returns a time-ordered UUID, so ids sort by creation instant.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (c *Controller) fire(r model.Reminder) {
	c.presenter.Present(r)
	c.changed()
}

// Advisory returns the advisory already given, if any, for views attached
// after it was raised.
func (c *Controller) Advisory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advisory
}

// OnAdvisory registers the callback for one-time user advisories.
func (c *Controller) OnAdvisory(fn func(msg string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdvisory = fn
}

// OnChange registers a callback run after every state change, including
// alarms raised by timers.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Scheduler exposes the scheduler for inspection.
func (c *Controller) Scheduler() *scheduler.Scheduler { return c.scheduler }

// Load restores persisted reminders, settles notification permission and
// re-arms every active reminder. Reminders whose time has passed ring now.
func (c *Controller) Load(ctx context.Context) error {
	reminders, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("Reminders loaded", "count", len(reminders))

	perm := c.requestPermission(ctx)
	c.logger.Info("Notification permission", "permission", perm)
	if perm == alarm.PermissionDenied {
		c.advise(DeniedAdvisory)
	}

	for _, r := range reminders {
		c.scheduler.Schedule(r)
	}
	c.changed()
	return nil
}

func (c *Controller) requestPermission(ctx context.Context) alarm.Permission {
	perm := alarm.PermissionUnsupported
	if c.notifier != nil {
		p, err := c.notifier.RequestPermission(ctx)
		if err != nil {
			c.logger.Warn("Notification permission request failed", "error", err)
			p = alarm.PermissionUnsupported
		}
		perm = p
	}
	c.presenter.SetPermission(perm)
	return perm
}

// EnableNotifications asks for notification permission again. A refusal
// produces the denied advisory, at most once per process.
func (c *Controller) EnableNotifications(ctx context.Context) (alarm.Permission, error) {
	perm := c.requestPermission(ctx)
	if perm != alarm.PermissionGranted {
		c.advise(DeniedAdvisory)
	} else {
		c.confirmNotifications(ctx)
	}
	c.changed()
	return perm, nil
}

// confirmNotifications shows a short-lived notification so the user sees
// the grant took effect.
func (c *Controller) confirmNotifications(ctx context.Context) {
	if c.notifier == nil {
		return
	}
	h, err := c.notifier.Show(ctx, alarm.Notification{
		Title: EnabledTitle,
		Body:  EnabledBody,
		Tag:   "notifications-enabled",
	})
	if err != nil {
		c.logger.Warn("Failed to show confirmation notification", "error", err)
		return
	}
	if h == nil {
		return
	}
	c.clock.AfterFunc(EnabledLinger, func() {
		if err := h.Close(); err != nil {
			c.logger.Warn("Failed to close confirmation notification", "error", err)
		}
	})
}

func (c *Controller) advise(msg string) {
	c.mu.Lock()
	if c.advisory != "" {
		c.mu.Unlock()
		return
	}
	c.advisory = msg
	fn := c.onAdvisory
	c.mu.Unlock()

	c.logger.Warn("Advisory", "message", msg)
	if fn != nil {
		fn(msg)
	}
}

func (c *Controller) AddReminder(ctx context.Context, in model.Input) (model.Reminder, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Reminder{}, err
	}

	id, err := c.newID()
	if err != nil {
		return model.Reminder{}, fmt.Errorf("failed to generate id: %w", err)
	}

	r := model.Reminder{ID: id, CreatedAt: c.clock.Now()}
	in.Apply(&r)

	if err := c.store.Add(ctx, r); err != nil {
		if !errors.Is(err, storage.ErrPersist) {
			return model.Reminder{}, err
		}
		c.logger.Warn("Reminder added but not persisted", "id", id, "error", err)
	}
	c.logger.Info("Reminder added", "id", id, "title", r.Title, "at", r.ScheduledAt)

	c.scheduler.Schedule(r)
	c.changed()
	return r, nil
}

// UpdateReminder edits a reminder and re-arms its alarm.
func (c *Controller) UpdateReminder(ctx context.Context, id string, in model.Input) (model.Reminder, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Reminder{}, err
	}

	updated, err := c.store.Update(ctx, id, func(r *model.Reminder) { in.Apply(r) })
	if err != nil {
		if !errors.Is(err, storage.ErrPersist) {
			return model.Reminder{}, err
		}
		c.logger.Warn("Reminder updated but not persisted", "id", id, "error", err)
	}

	if updated.Completed {
		c.scheduler.Cancel(id)
	} else {
		c.scheduler.Schedule(updated)
	}
	c.changed()
	return updated, nil
}

// CompleteReminder toggles completion. Completing cancels the pending alarm
// before the reminder changes; re-opening schedules it again. An alarm that
// is already ringing keeps ringing until dismissed.
func (c *Controller) CompleteReminder(ctx context.Context, id string) (model.Reminder, error) {
	current, ok := c.store.Get(id)
	if !ok {
		return model.Reminder{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if !current.Completed {
		c.scheduler.Cancel(id)
	}

	updated, err := c.store.Update(ctx, id, func(r *model.Reminder) { r.Completed = !r.Completed })
	if err != nil {
		if !errors.Is(err, storage.ErrPersist) {
			return model.Reminder{}, err
		}
		c.logger.Warn("Reminder toggled but not persisted", "id", id, "error", err)
	}

	if updated.Completed {
		c.scheduler.Cancel(id)
	} else {
		c.scheduler.Schedule(updated)
	}
	c.logger.Info("Reminder toggled", "id", id, "completed", updated.Completed)
	c.changed()
	return updated, nil
}

// DeleteReminder cancels the alarm and removes the reminder.
func (c *Controller) DeleteReminder(ctx context.Context, id string) error {
	c.scheduler.Cancel(id)

	if _, err := c.store.Remove(ctx, id); err != nil {
		if !errors.Is(err, storage.ErrPersist) {
			return err
		}
		c.logger.Warn("Reminder deleted but not persisted", "id", id, "error", err)
	}
	c.logger.Info("Reminder deleted", "id", id)
	c.changed()
	return nil
}

// DismissAlarm silences the ringing alarm for id.
func (c *Controller) DismissAlarm(id string) bool {
	return c.DismissAlarmFor(id, alarm.DismissButton)
}

// DismissAlarmFor is DismissAlarm with an explicit reason.
func (c *Controller) DismissAlarmFor(id string, reason alarm.DismissReason) bool {
	ok := c.presenter.Dismiss(id, reason)
	if ok {
		c.changed()
	}
	return ok
}

func (c *Controller) ActiveAlarms() []alarm.View {
	return c.presenter.Active()
}

func (c *Controller) Permission() alarm.Permission {
	return c.presenter.Permission()
}

func (c *Controller) SetFilter(f view.Filter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) Filter() view.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// FilteredView applies the current filter to the current snapshot.
func (c *Controller) FilteredView() []model.Reminder {
	return view.Apply(c.store.All(), c.Filter(), c.clock.Now())
}

// View applies f without touching the stored filter.
func (c *Controller) View(f view.Filter) []model.Reminder {
	return view.Apply(c.store.All(), f, c.clock.Now())
}

func (c *Controller) Reminders() []model.Reminder {
	return c.store.All()
}

func (c *Controller) Get(id string) (model.Reminder, bool) {
	return c.store.Get(id)
}

func (c *Controller) Stats() view.Stats {
	return view.Summarize(c.store.All(), c.clock.Now())
}

func (c *Controller) Now() time.Time {
	return c.clock.Now()
}

// Close cancels pending timers and silences ringing alarms.
func (c *Controller) Close() {
	c.scheduler.Stop()
	c.presenter.DismissAll(alarm.DismissShutdown)
	c.presenter.Wait()
}
