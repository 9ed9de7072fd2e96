package sound

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/model"
)

func TestPatternsCoverEveryRingtone(t *testing.T) {
	for _, r := range model.Ringtones {
		if len(Patterns[r]) == 0 {
			t.Errorf("ringtone %s has no pattern", r)
		}
	}
	if got := Pattern("unknown"); len(got) != len(Patterns[model.RingtoneClassic]) {
		t.Errorf("unknown ringtone should fall back to classic")
	}
}

func TestPatternsFitRepeatInterval(t *testing.T) {
	interval := alarm.DefaultOptions().RepeatInterval
	for r, tones := range Patterns {
		var total time.Duration
		for _, tone := range tones {
			total += time.Duration(tone.Ms) * time.Millisecond
		}
		if total >= interval {
			t.Errorf("ringtone %s lasts %s, want under %s", r, total, interval)
		}
	}
}

func TestBeeperPlaysPattern(t *testing.T) {
	b := NewBeeper(nil)
	var mu sync.Mutex
	var freqs []float64
	b.beep = func(freq float64, ms int) error {
		mu.Lock()
		defer mu.Unlock()
		freqs = append(freqs, freq)
		return nil
	}

	if err := b.PlayTone(model.RingtoneChime); err != nil {
		t.Fatal(err)
	}
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(freqs) != 2 || freqs[0] != 523 || freqs[1] != 659 {
		t.Errorf("freqs = %v", freqs)
	}
}

func TestBeeperDoesNotOverlap(t *testing.T) {
	b := NewBeeper(nil)
	release := make(chan struct{})
	started := make(chan struct{}, 16)
	b.beep = func(float64, int) error {
		started <- struct{}{}
		<-release
		return errors.New("no speaker")
	}

	b.PlayTone(model.RingtoneClassic)
	<-started
	b.PlayTone(model.RingtoneClassic)
	close(release)
	b.Wait()

	if len(started) != 0 {
		t.Errorf("second pass overlapped the first")
	}
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)
	for i := 0; i < 3; i++ {
		if err := b.PlayTone(model.RingtoneGentle); err != nil {
			t.Fatal(err)
		}
	}
	if buf.String() != "\a\a\a" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{BackendBeep, BackendBell, BackendNone} {
		if _, err := New(name, &bytes.Buffer{}, nil); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("mp3", nil, nil); err == nil {
		t.Error("unknown backend should fail")
	}
}
