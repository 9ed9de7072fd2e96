package tui

import (
	"slices"
	"sync"

	"github.com/noahxzhu/remindme/internal/alarm"
)

type alarmsChangedMsg struct{}

type overlayEntry struct {
	view    alarm.View
	dismiss alarm.DismissFunc
}

// Overlay keeps the ringing alarms the modal shows. Open and Close never
// block; the program is told about changes from a separate goroutine.
type Overlay struct {
	mu      sync.Mutex
	entries []overlayEntry
	notify  func()
}

func NewOverlay() *Overlay {
	return &Overlay{}
}

// OnChange sets the function run after every Open and Close.
func (o *Overlay) OnChange(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notify = fn
}

func (o *Overlay) Open(v alarm.View, dismiss alarm.DismissFunc) {
	o.mu.Lock()
	o.entries = slices.DeleteFunc(o.entries, func(e overlayEntry) bool {
		return e.view.ReminderID == v.ReminderID
	})
	o.entries = append(o.entries, overlayEntry{view: v, dismiss: dismiss})
	fn := o.notify
	o.mu.Unlock()

	if fn != nil {
		go fn()
	}
}

func (o *Overlay) Close(reminderID string) {
	o.mu.Lock()
	n := len(o.entries)
	o.entries = slices.DeleteFunc(o.entries, func(e overlayEntry) bool {
		return e.view.ReminderID == reminderID
	})
	changed := len(o.entries) != n
	fn := o.notify
	o.mu.Unlock()

	if changed && fn != nil {
		go fn()
	}
}

// Top returns the oldest open alarm.
func (o *Overlay) Top() (alarm.View, alarm.DismissFunc, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.entries) == 0 {
		return alarm.View{}, nil, false
	}
	e := o.entries[0]
	return e.view, e.dismiss, true
}

func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}
