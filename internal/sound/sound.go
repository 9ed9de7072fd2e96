// Package sound plays alarm ringtones.
package sound

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/beeep"
	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/model"
)

const (
	BackendBeep = "beep"
	BackendBell = "bell"
	BackendNone = "none"
)

// Tone is one beep: frequency in Hz, duration in milliseconds.
type Tone struct {
	Freq float64
	Ms   int
}

// Patterns is one pass of each ringtone. Every pass is shorter than the
// alarm repeat interval so consecutive passes never collide.
var Patterns = map[model.Ringtone][]Tone{
	model.RingtoneClassic: {{800, 200}, {1000, 200}, {800, 200}},
	model.RingtoneDigital: {{1200, 150}, {1000, 150}, {1200, 150}},
	model.RingtoneChime:   {{523, 250}, {659, 350}},
	model.RingtoneUrgent:  {{800, 50}, {1000, 50}, {800, 50}, {1000, 50}, {800, 50}, {1000, 50}},
	model.RingtoneGentle:  {{440, 220}, {523, 220}, {659, 220}},
}

func Pattern(r model.Ringtone) []Tone {
	if p, ok := Patterns[r]; ok {
		return p
	}
	return Patterns[model.RingtoneClassic]
}

// New returns the player for a configured backend name.
func New(backend string, out io.Writer, logger *slog.Logger) (alarm.AudioPlayer, error) {
	switch backend {
	case BackendBeep:
		return NewBeeper(logger), nil
	case BackendBell:
		return NewBell(out), nil
	case BackendNone, "":
		return Silent{}, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}

// Beeper plays tone patterns through the system speaker. A pass still
// sounding when the next one is due is not overlapped.
type Beeper struct {
	beep   func(freq float64, ms int) error
	logger *slog.Logger
	busy   atomic.Bool
	wg     sync.WaitGroup
}

func NewBeeper(logger *slog.Logger) *Beeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Beeper{
		beep:   func(freq float64, ms int) error { return beeep.Beep(freq, ms) },
		logger: logger,
	}
}

// PlayTone starts one pass in the background.
func (b *Beeper) PlayTone(r model.Ringtone) error {
	if !b.busy.CompareAndSwap(false, true) {
		return nil
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.busy.Store(false)
		for _, t := range Pattern(r) {
			if err := b.beep(t.Freq, t.Ms); err != nil {
				b.logger.Debug("Beep failed", "ringtone", r, "error", err)
				return
			}
		}
	}()
	return nil
}

// Wait blocks until the pass in progress finishes.
func (b *Beeper) Wait() { b.wg.Wait() }

// Bell rings the terminal bell once per pass.
type Bell struct {
	mu  sync.Mutex
	out io.Writer
}

func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (b *Bell) PlayTone(r model.Ringtone) error {
	if b.out == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.out, "\a"); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}
	return nil
}

type Silent struct{}

func (Silent) PlayTone(model.Ringtone) error { return nil }
