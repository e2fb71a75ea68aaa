package goPin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreMissingFileIsAbsent(t *testing.T) {
	store := NewFileAttemptStore(filepath.Join(t.TempDir(), "attempts.json"))

	record, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected no record, got %+v", record)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "attempts.json")
	store := NewFileAttemptStore(path)
	ctx := context.Background()

	until := time.Unix(1_700_000_500, 0).UTC()
	if err := store.Save(ctx, &AttemptRecord{FailedAttempts: 3, LockedUntil: &until}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	record, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if record == nil || record.FailedAttempts != 3 {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.LockedUntil == nil || !record.LockedUntil.Equal(until) {
		t.Fatalf("lockout timestamp did not survive the round trip: %+v", record)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileStoreCorruptFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file failed: %v", err)
	}

	store := NewFileAttemptStore(path)
	record, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if record != nil {
		t.Fatalf("corrupt file must read as absent, got %+v", record)
	}
}

func TestFileStoreClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.json")
	store := NewFileAttemptStore(path)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear of missing file failed: %v", err)
	}

	if err := store.Save(ctx, &AttemptRecord{FailedAttempts: 1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, err=%v", err)
	}
}

func TestFileStoreNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewFileAttemptStore(filepath.Join(dir, "attempts.json"))

	if err := store.Save(context.Background(), &AttemptRecord{FailedAttempts: 2}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "attempts.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
