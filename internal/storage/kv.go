package storage

import (
	"context"
	"fmt"
)

// KV is the persistence collaborator: an opaque string store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the KV backend named by driver, rooted at path.
func Open(driver, path string) (KV, error) {
	switch driver {
	case DriverFile, "":
		return NewFileKV(path), nil
	case DriverSQLite:
		return NewSQLiteKV(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
