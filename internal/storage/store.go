package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/noahxzhu/remindme/internal/model"
)

// DefaultKey is where the reminder collection lives in the KV backend.
const DefaultKey = "reminders"

var (
	ErrNotFound    = errors.New("reminder not found")
	ErrDuplicateID = errors.New("duplicate reminder id")
	ErrPersist     = errors.New("failed to persist reminders")
)

// Store is the in-memory, ordered reminder collection. Each mutation installs
// a fresh slice, so snapshots handed out earlier never change underneath the
// reader.
type Store struct {
	// writeMu orders mutations together with their saves.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	kv        KV
	key       string
	logger    *slog.Logger
	reminders []model.Reminder
}

func NewStore(kv KV, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:        kv,
		key:       key,
		logger:    logger,
		reminders: []model.Reminder{},
	}
}

// Load reads the collection from the backend. Missing or corrupt data yields
// an empty collection; only backend I/O failures are returned. Reminders
// without a known ringtone are migrated to classic here, once.
func (s *Store) Load(ctx context.Context) ([]model.Reminder, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("Storage file is corrupt, starting empty", "error", err)
		raw, ok, err = "", false, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}

	var loaded []model.Reminder
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.logger.Warn("Stored reminders are corrupt, starting empty", "key", s.key, "error", err)
			if err := s.kv.Set(ctx, s.key+".corrupt", raw); err != nil {
				s.logger.Warn("Failed to back up corrupt reminders", "error", err)
			}
			loaded = nil
		}
	}

	reminders, migrated := normalize(loaded, s.logger)

	s.mu.Lock()
	s.reminders = reminders
	s.mu.Unlock()

	if migrated > 0 {
		s.logger.Info("Migrated reminders to default ringtone", "count", migrated)
		if err := s.Save(ctx, reminders); err != nil {
			s.logger.Warn("Failed to save migrated reminders", "error", err)
		}
	}

	return slices.Clone(reminders), nil
}

// normalize drops duplicate ids and backfills ringtones.
func normalize(in []model.Reminder, logger *slog.Logger) ([]model.Reminder, int) {
	out := make([]model.Reminder, 0, len(in))
	seen := make(map[string]bool, len(in))
	migrated := 0

	for _, r := range in {
		if seen[r.ID] {
			logger.Warn("Dropping reminder with duplicate id", "id", r.ID, "title", r.Title)
			continue
		}
		seen[r.ID] = true

		if !r.Ringtone.Known() {
			r.Ringtone = model.RingtoneClassic
			migrated++
		}
		out = append(out, r)
	}
	return out, migrated
}

// Save overwrites the stored collection with reminders.
func (s *Store) Save(ctx context.Context, reminders []model.Reminder) error {
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	data, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// All returns the current snapshot in insertion order.
func (s *Store) All() []model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reminders)
}

func (s *Store) Get(id string) (model.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.reminders, id); i >= 0 {
		return s.reminders[i], true
	}
	return model.Reminder{}, false
}

func (s *Store) Add(ctx context.Context, r model.Reminder) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if indexOf(s.reminders, r.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
	}
	next := make([]model.Reminder, len(s.reminders), len(s.reminders)+1)
	copy(next, s.reminders)
	next = append(next, r)
	s.reminders = next
	s.mu.Unlock()

	return s.Save(ctx, next)
}

// Update applies fn to a copy of the reminder and installs the result.
func (s *Store) Update(ctx context.Context, id string, fn func(*model.Reminder)) (model.Reminder, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := indexOf(s.reminders, id)
	if i < 0 {
		s.mu.Unlock()
		return model.Reminder{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := slices.Clone(s.reminders)
	fn(&next[i])
	next[i].ID = id
	updated := next[i]
	s.reminders = next
	s.mu.Unlock()

	return updated, s.Save(ctx, next)
}

func (s *Store) Remove(ctx context.Context, id string) (model.Reminder, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i := indexOf(s.reminders, id)
	if i < 0 {
		s.mu.Unlock()
		return model.Reminder{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.reminders[i]
	next := make([]model.Reminder, 0, len(s.reminders)-1)
	next = append(next, s.reminders[:i]...)
	next = append(next, s.reminders[i+1:]...)
	s.reminders = next
	s.mu.Unlock()

	return removed, s.Save(ctx, next)
}

func indexOf(reminders []model.Reminder, id string) int {
	return slices.IndexFunc(reminders, func(r model.Reminder) bool { return r.ID == id })
}
