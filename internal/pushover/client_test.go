package pushover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient("tok", "usr")
	c.BaseURL = srv.URL
	return c
}

func TestSendMessageEmergency(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages.json" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		want := map[string]string{
			"token": "tok", "user": "usr", "title": "T", "message": "M",
			"priority": "2", "sound": "siren", "retry": "60", "expire": "3600",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		w.Write([]byte(`{"status":1,"request":"x","receipt":"rcpt1"}`))
	})

	receipt, err := c.SendMessage(context.Background(), Message{
		Title: "T", Message: "M", Priority: PriorityEmergency, Sound: "siren",
		Retry: time.Minute, Expire: time.Hour,
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if receipt != "rcpt1" {
		t.Errorf("receipt = %q", receipt)
	}
}

func TestSendMessageNormalOmitsEmergencyFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		for _, k := range []string{"priority", "retry", "expire", "sound"} {
			if r.PostForm.Has(k) {
				t.Errorf("unexpected field %s", k)
			}
		}
		w.Write([]byte(`{"status":1}`))
	})
	if _, err := c.SendMessage(context.Background(), Message{Title: "T", Message: "M"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
}

func TestAPIErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"status":0}`, http.StatusBadRequest)
		})
		_, err := c.SendMessage(context.Background(), Message{Title: "T", Message: "M"})
		if err == nil || !strings.Contains(err.Error(), "400") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("status zero", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":0,"errors":["user identifier is invalid"]}`))
		})
		_, err := c.SendMessage(context.Background(), Message{Title: "T", Message: "M"})
		if err == nil || !strings.Contains(err.Error(), "user identifier is invalid") {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestReceiptAndCancel(t *testing.T) {
	var cancelled bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/receipts/rcpt1.json":
			if r.URL.Query().Get("token") != "tok" {
				t.Errorf("token missing from query")
			}
			w.Write([]byte(`{"status":1,"acknowledged":1,"expired":0}`))
		case r.Method == http.MethodPost && r.URL.Path == "/receipts/rcpt1/cancel.json":
			cancelled = true
			w.Write([]byte(`{"status":1}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})

	rc, err := c.Receipt(context.Background(), "rcpt1")
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if !rc.Acknowledged || rc.Expired {
		t.Errorf("receipt = %+v", rc)
	}

	if err := c.CancelReceipt(context.Background(), "rcpt1"); err != nil {
		t.Fatalf("CancelReceipt: %v", err)
	}
	if !cancelled {
		t.Error("cancel endpoint not called")
	}
}
