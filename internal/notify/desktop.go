// Package notify holds the system notification backends an alarm can use.
package notify

import (
	"context"

	"github.com/gen2brain/beeep"
	"github.com/noahxzhu/remindme/internal/alarm"
)

// Desktop shows alarms through the operating system's notification center.
type Desktop struct {
	enabled bool
	send    func(title, body string) error
}

func NewDesktop(enabled bool) *Desktop {
	return &Desktop{
		enabled: enabled,
		send: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}
}

// RequestPermission grants when desktop notifications are enabled in config;
// the platform itself has no prompt to answer.
func (d *Desktop) RequestPermission(ctx context.Context) (alarm.Permission, error) {
	if !d.enabled {
		return alarm.PermissionDenied, nil
	}
	return alarm.PermissionGranted, nil
}

func (d *Desktop) Show(ctx context.Context, n alarm.Notification) (alarm.Handle, error) {
	if err := d.send(n.Title, n.Body); err != nil {
		return nil, err
	}
	// Desktop notifications cannot be withdrawn or clicked through beeep.
	return nopHandle{}, nil
}

type nopHandle struct{}

func (nopHandle) Close() error { return nil }
