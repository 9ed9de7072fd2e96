package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorrupt reports a backing file that is not a JSON object.
var ErrCorrupt = errors.New("corrupt storage file")

// FileKV keeps every key in a single JSON object file.
type FileKV struct {
	mu       sync.RWMutex
	filePath string
}

func NewFileKV(filePath string) *FileKV {
	return &FileKV{filePath: filePath}
}

func (s *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (s *FileKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if errors.Is(err, ErrCorrupt) {
		// Keep the unreadable file around and start over.
		if err := os.Rename(s.filePath, s.filePath+".corrupt"); err != nil {
			return fmt.Errorf("failed to move corrupt file aside: %w", err)
		}
		entries, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func (s *FileKV) Close() error { return nil }

// readLocked loads the whole file. A missing or empty file is an empty map.
func (s *FileKV) readLocked() (map[string]string, error) {
	entries := map[string]string{}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.filePath, err)
	}
	return entries, nil
}
