package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/pushover"
)

type stubNotifier struct {
	perm    alarm.Permission
	permErr error
	showErr error
	shown   int
	closed  int
}

func (s *stubNotifier) RequestPermission(ctx context.Context) (alarm.Permission, error) {
	return s.perm, s.permErr
}

func (s *stubNotifier) Show(ctx context.Context, n alarm.Notification) (alarm.Handle, error) {
	if s.showErr != nil {
		return nil, s.showErr
	}
	s.shown++
	return closeFunc(func() error { s.closed++; return nil }), nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func TestDesktop(t *testing.T) {
	d := NewDesktop(true)
	var title string
	d.send = func(ti, _ string) error { title = ti; return nil }

	perm, err := d.RequestPermission(context.Background())
	if err != nil || perm != alarm.PermissionGranted {
		t.Fatalf("RequestPermission = %v, %v", perm, err)
	}
	h, err := d.Show(context.Background(), alarm.Notification{Title: "REMINDER ALERT: Tea"})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if title != "REMINDER ALERT: Tea" {
		t.Errorf("title = %q", title)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	off := NewDesktop(false)
	if perm, _ := off.RequestPermission(context.Background()); perm != alarm.PermissionDenied {
		t.Errorf("disabled desktop permission = %v", perm)
	}
}

func TestMultiPermission(t *testing.T) {
	tests := []struct {
		name  string
		perms []alarm.Permission
		want  alarm.Permission
	}{
		{"none", nil, alarm.PermissionUnsupported},
		{"one granted", []alarm.Permission{alarm.PermissionDenied, alarm.PermissionGranted}, alarm.PermissionGranted},
		{"denied wins over unsupported", []alarm.Permission{alarm.PermissionUnsupported, alarm.PermissionDenied}, alarm.PermissionDenied},
		{"all unsupported", []alarm.Permission{alarm.PermissionUnsupported}, alarm.PermissionUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ns []alarm.Notifier
			for _, p := range tt.perms {
				ns = append(ns, &stubNotifier{perm: p})
			}
			got, err := NewMulti(ns...).RequestPermission(context.Background())
			if err != nil {
				t.Fatalf("RequestPermission: %v", err)
			}
			if got != tt.want {
				t.Errorf("permission = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMultiShowOnlyGranted(t *testing.T) {
	granted := &stubNotifier{perm: alarm.PermissionGranted}
	failing := &stubNotifier{perm: alarm.PermissionGranted, showErr: errors.New("boom")}
	denied := &stubNotifier{perm: alarm.PermissionDenied}
	m := NewMulti(granted, failing, denied)

	if _, err := m.RequestPermission(context.Background()); err != nil {
		t.Fatal(err)
	}
	h, err := m.Show(context.Background(), alarm.Notification{Title: "x"})
	if err != nil {
		t.Fatalf("Show should succeed when one backend works: %v", err)
	}
	if granted.shown != 1 || denied.shown != 0 {
		t.Errorf("shown granted=%d denied=%d", granted.shown, denied.shown)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if granted.closed != 1 {
		t.Errorf("closed = %d", granted.closed)
	}

	allFail := NewMulti(failing)
	allFail.RequestPermission(context.Background())
	if _, err := allFail.Show(context.Background(), alarm.Notification{}); err == nil {
		t.Error("Show should fail when every backend fails")
	}
}

func TestPushoverSound(t *testing.T) {
	for _, r := range model.Ringtones {
		if PushoverSound(r) == "pushover" {
			t.Errorf("ringtone %s has no mapped sound", r)
		}
	}
	if PushoverSound("kazoo") != "pushover" {
		t.Error("unknown ringtone should fall back to the default sound")
	}
}

type fakeAPI struct {
	mu        sync.Mutex
	acked     bool
	cancelled int
	sent      []string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.URL.Path == "/messages.json":
			r.ParseForm()
			f.sent = append(f.sent, r.PostForm.Get("priority")+"/"+r.PostForm.Get("sound"))
			w.Write([]byte(`{"status":1,"receipt":"r1"}`))
		case r.URL.Path == "/receipts/r1.json":
			if f.acked {
				w.Write([]byte(`{"status":1,"acknowledged":1}`))
			} else {
				w.Write([]byte(`{"status":1,"acknowledged":0}`))
			}
		case strings.HasSuffix(r.URL.Path, "/cancel.json"):
			f.cancelled++
			w.Write([]byte(`{"status":1}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func newPushover(t *testing.T, api *fakeAPI) *Pushover {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	c := pushover.NewClient("tok", "usr")
	c.BaseURL = srv.URL
	return NewPushover(c, PushoverOptions{PollInterval: 5 * time.Millisecond}, nil)
}

func TestPushoverAcknowledgeClicks(t *testing.T) {
	api := &fakeAPI{}
	p := newPushover(t, api)

	if perm, _ := p.RequestPermission(context.Background()); perm != alarm.PermissionGranted {
		t.Fatalf("permission = %v", perm)
	}

	clicked := make(chan struct{})
	var once sync.Once
	h, err := p.Show(context.Background(), alarm.Notification{
		Title: "REMINDER ALERT: Tea", Ringtone: model.RingtoneUrgent, RequireInteraction: true,
		OnClick: func() { once.Do(func() { close(clicked) }) },
	})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}

	api.mu.Lock()
	api.acked = true
	api.mu.Unlock()

	select {
	case <-clicked:
	case <-time.After(2 * time.Second):
		t.Fatal("acknowledgement was not reported as a click")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.cancelled != 0 {
		t.Errorf("acknowledged message should not be cancelled, got %d", api.cancelled)
	}
	if len(api.sent) != 1 || api.sent[0] != "2/siren" {
		t.Errorf("sent = %v", api.sent)
	}
}

func TestPushoverCloseCancelsReceipt(t *testing.T) {
	api := &fakeAPI{}
	p := newPushover(t, api)

	var clicks atomic.Int32
	h, err := p.Show(context.Background(), alarm.Notification{
		Title: "x", RequireInteraction: true, OnClick: func() { clicks.Add(1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", api.cancelled)
	}
	if clicks.Load() != 0 {
		t.Errorf("clicks = %d", clicks.Load())
	}
}

func TestPushoverUnsupportedWithoutCredentials(t *testing.T) {
	p := NewPushover(pushover.NewClient("", ""), PushoverOptions{}, nil)
	if perm, _ := p.RequestPermission(context.Background()); perm != alarm.PermissionUnsupported {
		t.Errorf("permission = %v", perm)
	}
}
