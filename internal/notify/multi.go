package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/noahxzhu/remindme/internal/alarm"
)

// Multi fans a notification out to every backend that granted permission.
type Multi struct {
	notifiers []alarm.Notifier

	mu      sync.Mutex
	granted []alarm.Notifier
}

func NewMulti(notifiers ...alarm.Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// RequestPermission is granted when any backend grants it, denied when at
// least one denies and none grants, and unsupported otherwise.
func (m *Multi) RequestPermission(ctx context.Context) (alarm.Permission, error) {
	var granted []alarm.Notifier
	denied := false
	var errs []error

	for _, n := range m.notifiers {
		perm, err := n.RequestPermission(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch perm {
		case alarm.PermissionGranted:
			granted = append(granted, n)
		case alarm.PermissionDenied:
			denied = true
		}
	}

	m.mu.Lock()
	m.granted = granted
	m.mu.Unlock()

	switch {
	case len(granted) > 0:
		return alarm.PermissionGranted, nil
	case denied:
		return alarm.PermissionDenied, nil
	case len(errs) > 0:
		return alarm.PermissionUnsupported, errors.Join(errs...)
	default:
		return alarm.PermissionUnsupported, nil
	}
}

// Show fails only when every granted backend fails.
func (m *Multi) Show(ctx context.Context, n alarm.Notification) (alarm.Handle, error) {
	m.mu.Lock()
	granted := m.granted
	m.mu.Unlock()

	var handles multiHandle
	var errs []error
	for _, b := range granted {
		h, err := b.Show(ctx, n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if h != nil {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return handles, nil
}

type multiHandle []alarm.Handle

func (hs multiHandle) Close() error {
	var errs []error
	for _, h := range hs {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
