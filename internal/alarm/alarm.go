// Package alarm turns a due reminder into a ringing, dismissible alert: a
// repeating ringtone, a system notification and an in-app overlay.
package alarm

import (
	"context"
	"time"

	"github.com/noahxzhu/remindme/internal/model"
)

// AudioPlayer plays one pass of a ringtone's tone pattern.
type AudioPlayer interface {
	PlayTone(ringtone model.Ringtone) error
}

type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

// Notification is what a Notifier shows.
type Notification struct {
	Title    string
	Body     string
	Tag      string
	Ringtone model.Ringtone
	// RequireInteraction keeps the notification up until the user acts on it.
	RequireInteraction bool
	// OnClick, if set, is called when the user acknowledges the notification.
	OnClick func()
}

// Handle closes a notification that is on screen.
type Handle interface {
	Close() error
}

// Notifier is a system-level notification channel.
type Notifier interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, n Notification) (Handle, error)
}

type DismissReason string

const (
	DismissButton       DismissReason = "button"
	DismissNotification DismissReason = "notification"
	DismissEscape       DismissReason = "escape"
	DismissTimeout      DismissReason = "timeout"
	DismissSuperseded   DismissReason = "superseded"
	DismissShutdown     DismissReason = "shutdown"
)

// DismissFunc is handed to an Overlay; calling it more than once is safe.
type DismissFunc func(reason DismissReason)

// View is the information an overlay shows for a ringing alarm.
type View struct {
	ReminderID    string
	Title         string
	Description   string
	ScheduledAt   time.Time
	Ringtone      model.Ringtone
	RingtoneLabel string
	RaisedAt      time.Time
}

// Overlay is the in-app modal.
type Overlay interface {
	Open(v View, dismiss DismissFunc)
	Close(reminderID string)
}

type Options struct {
	RepeatInterval time.Duration
	MaxRepeats     int
	AutoDismiss    time.Duration
}

func DefaultOptions() Options {
	return Options{
		RepeatInterval: 800 * time.Millisecond,
		MaxRepeats:     30,
		AutoDismiss:    30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RepeatInterval <= 0 {
		o.RepeatInterval = d.RepeatInterval
	}
	if o.MaxRepeats <= 0 {
		o.MaxRepeats = d.MaxRepeats
	}
	if o.AutoDismiss <= 0 {
		o.AutoDismiss = d.AutoDismiss
	}
	return o
}
