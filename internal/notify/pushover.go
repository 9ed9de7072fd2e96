package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/pushover"
)

// sounds maps ringtones to the closest built-in Pushover sound.
var sounds = map[model.Ringtone]string{
	model.RingtoneClassic: "classical",
	model.RingtoneDigital: "spacealarm",
	model.RingtoneChime:   "magic",
	model.RingtoneUrgent:  "siren",
	model.RingtoneGentle:  "pianobar",
}

func PushoverSound(r model.Ringtone) string {
	if s, ok := sounds[r]; ok {
		return s
	}
	return "pushover"
}

// PushoverOptions tune the emergency message.
type PushoverOptions struct {
	Retry        time.Duration
	Expire       time.Duration
	PollInterval time.Duration
}

// Pushover sends each alarm as an emergency-priority message, which keeps
// alerting the phone until acknowledged. An acknowledgement counts as a click.
type Pushover struct {
	client *pushover.Client
	opts   PushoverOptions
	logger *slog.Logger
}

func NewPushover(client *pushover.Client, opts PushoverOptions, logger *slog.Logger) *Pushover {
	if opts.Retry <= 0 {
		opts.Retry = time.Minute
	}
	if opts.Expire <= 0 {
		opts.Expire = time.Hour
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pushover{client: client, opts: opts, logger: logger}
}

func (p *Pushover) RequestPermission(ctx context.Context) (alarm.Permission, error) {
	if p.client == nil || p.client.Token == "" || p.client.User == "" {
		return alarm.PermissionUnsupported, nil
	}
	return alarm.PermissionGranted, nil
}

func (p *Pushover) Show(ctx context.Context, n alarm.Notification) (alarm.Handle, error) {
	priority := pushover.PriorityHigh
	if n.RequireInteraction {
		priority = pushover.PriorityEmergency
	}

	receipt, err := p.client.SendMessage(ctx, pushover.Message{
		Title:    n.Title,
		Message:  n.Body,
		Priority: priority,
		Sound:    PushoverSound(n.Ringtone),
		Retry:    p.opts.Retry,
		Expire:   p.opts.Expire,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send pushover message: %w", err)
	}
	p.logger.Info("Pushover message sent", "tag", n.Tag, "receipt", receipt)

	pollCtx, cancel := context.WithCancel(context.Background())
	h := &pushoverHandle{p: p, receipt: receipt, cancel: cancel, tag: n.Tag}
	if receipt != "" && n.OnClick != nil {
		h.wg.Add(1)
		go h.poll(pollCtx, n.OnClick)
	}
	return h, nil
}

type pushoverHandle struct {
	p       *Pushover
	receipt string
	tag     string
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	once  sync.Once
	mu    sync.Mutex
	acked bool
}

func (h *pushoverHandle) poll(ctx context.Context, onClick func()) {
	defer h.wg.Done()
	ticker := time.NewTicker(h.p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rc, err := h.p.client.Receipt(ctx, h.receipt)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.p.logger.Warn("Failed to poll pushover receipt", "receipt", h.receipt, "error", err)
			continue
		}
		if rc.Expired {
			return
		}
		if rc.Acknowledged {
			h.mu.Lock()
			h.acked = true
			h.mu.Unlock()
			h.p.logger.Info("Pushover message acknowledged", "tag", h.tag, "receipt", h.receipt)
			// onClick dismisses the alarm, which calls Close; run it apart so
			// Close can wait for this goroutine.
			go onClick()
			return
		}
	}
}

// Close stops polling and cancels outstanding retries.
func (h *pushoverHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.cancel()
		h.wg.Wait()

		h.mu.Lock()
		acked := h.acked
		h.mu.Unlock()

		if h.receipt == "" || acked {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := h.p.client.CancelReceipt(ctx, h.receipt); cerr != nil {
			err = fmt.Errorf("failed to cancel pushover receipt: %w", cerr)
		}
	})
	return err
}
