package goPin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileAttemptStore is a durable single-profile [AttemptStore] backed by a
// small JSON file, written atomically (temp file + fsync + rename). It is the
// localStorage analogue for desktop/terminal deployments. A missing or
// corrupt file is treated as "no record" — the state is advisory, so a bad
// read must never block PIN entry.
type FileAttemptStore struct {
	mu   sync.Mutex
	path string
}

type fileAttemptRecord struct {
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
}

// NewFileAttemptStore describes the newfileattemptstore operation and its observable behavior.
//
// NewFileAttemptStore may return an error when input validation, dependency calls, or security checks fail.
// NewFileAttemptStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewFileAttemptStore(path string) *FileAttemptStore {
	return &FileAttemptStore{path: path}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *FileAttemptStore) Load(_ context.Context) (*AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("attempt store read: %w", err)
	}

	var rec fileAttemptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupt record: treat as absent rather than poisoning every status check.
		return nil, nil
	}

	return &AttemptRecord{
		FailedAttempts: rec.FailedAttempts,
		LockedUntil:    rec.LockedUntil,
	}, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *FileAttemptStore) Save(_ context.Context, record *AttemptRecord) error {
	if record == nil {
		return s.Clear(context.Background())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(fileAttemptRecord{
		FailedAttempts: record.FailedAttempts,
		LockedUntil:    record.LockedUntil,
	})
	if err != nil {
		return fmt.Errorf("attempt store encode: %w", err)
	}

	return atomicWriteFile(s.path, data, 0o600)
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *FileAttemptStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("attempt store clear: %w", err)
	}
	return nil
}

// atomicWriteFile writes data to path via a temp file in the same directory,
// fsyncs, then renames. On crash either the old record or the new complete
// record exists, never a partial write.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("attempt store mkdir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".pinlock-")
	if err != nil {
		return fmt.Errorf("attempt store temp file: %w", err)
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			_ = f.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("attempt store write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("attempt store sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("attempt store close: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("attempt store chmod: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("attempt store rename: %w", err)
	}

	success = true
	return nil
}
