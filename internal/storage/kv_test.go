package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing = ok %v err %v", ok, err)
	}
	if err := kv.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := kv.Set(ctx, "other", "x"); err != nil {
		t.Fatalf("Set other: %v", err)
	}

	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("Get k = %q %v %v, want v2", v, ok, err)
	}
}

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	kv := NewFileKV(path)
	exerciseKV(t, kv)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("data file not written: %v", err)
	}
	reopened := NewFileKV(path)
	if v, ok, _ := reopened.Get(context.Background(), "other"); !ok || v != "x" {
		t.Fatalf("reopened Get = %q %v", v, ok)
	}
}

func TestFileKVCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	kv := NewFileKV(path)
	if _, _, err := kv.Get(context.Background(), "k"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Get err = %v, want ErrCorrupt", err)
	}

	if err := kv.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set over corrupt file: %v", err)
	}
	if v, ok, err := kv.Get(context.Background(), "k"); err != nil || !ok || v != "v" {
		t.Fatalf("Get after recovery = %q %v %v", v, ok, err)
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("corrupt file not kept: %v", err)
	}
}

func TestStoreLoadOverCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewStore(NewFileKV(path), "", quietLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d reminders, want 0", len(got))
	}
}

func TestSQLiteKV(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "remindme.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
	kv, err := Open(DriverFile, filepath.Join(t.TempDir(), "d.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.(*FileKV); !ok {
		t.Fatalf("Open(file) = %T", kv)
	}
}
