package goPin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// LockedError carries the live countdown for a rejected attempt while PIN
// entry is locked. It unwraps to [ErrPinLocked].
type LockedError struct {
	RemainingSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("pin entry locked for %d more seconds", e.RemainingSeconds)
}

func (e *LockedError) Unwrap() error { return ErrPinLocked }

// LockoutTracker defines a public type used by goPin APIs.
//
// LockoutTracker instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// The tracker exclusively owns the persisted [AttemptRecord]. All state
// transitions are serialized behind one mutex so no attempt can race past a
// lockout check. Store read errors fail open (no lockout known); store write
// errors are swallowed and counted, never propagated into a flow.
type LockoutTracker struct {
	mu            sync.Mutex
	store         AttemptStore
	clock         Clock
	config        LockoutConfig
	writeFailures atomic.Uint64
}

// NewLockoutTracker describes the newlockouttracker operation and its observable behavior.
//
// NewLockoutTracker may return an error when input validation, dependency calls, or security checks fail.
// NewLockoutTracker does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewLockoutTracker(store AttemptStore, clock Clock, cfg LockoutConfig) *LockoutTracker {
	if clock == nil {
		clock = systemClock{}
	}
	return &LockoutTracker{
		store:  store,
		clock:  clock,
		config: cfg,
	}
}

// Status describes the status operation and its observable behavior.
//
// Status may return an error when input validation, dependency calls, or security checks fail.
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A lockout expiry in the past clears the persisted record as a side effect
// (lazy expiry) and reports not-locked.
func (t *LockoutTracker) Status(ctx context.Context) LockoutStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, err := t.store.Load(ctx)
	if err != nil || record == nil {
		// Fail open: an unreadable store means no lockout is known.
		return LockoutStatus{}
	}

	if record.LockedUntil == nil {
		return LockoutStatus{FailedAttempts: record.FailedAttempts}
	}

	remaining := ceilSeconds(record.LockedUntil.Sub(t.clock.Now()))
	if remaining <= 0 {
		if err := t.store.Clear(ctx); err != nil {
			t.writeFailures.Add(1)
		}
		return LockoutStatus{}
	}

	return LockoutStatus{
		Locked:           true,
		RemainingSeconds: remaining,
		FailedAttempts:   record.FailedAttempts,
	}
}

// RecordFailure describes the recordfailure operation and its observable behavior.
//
// RecordFailure may return an error when input validation, dependency calls, or security checks fail.
// RecordFailure does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The server-reported count and lockout timestamp are authoritative when
// supplied. When the server provides no timestamp but the count has crossed
// the threshold, the progressive table estimates one so the countdown has
// something to display. The expiry is recomputed each call, never accumulated.
func (t *LockoutTracker) RecordFailure(ctx context.Context, failedAttempts int, lockedUntil *time.Time) {
	if failedAttempts < 0 {
		failedAttempts = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record := &AttemptRecord{FailedAttempts: failedAttempts}
	switch {
	case lockedUntil != nil:
		until := *lockedUntil
		record.LockedUntil = &until
	case failedAttempts >= t.config.Threshold:
		until := t.clock.Now().Add(t.EstimateLockout(failedAttempts))
		record.LockedUntil = &until
	}

	if err := t.store.Save(ctx, record); err != nil {
		t.writeFailures.Add(1)
	}
}

// Reset describes the reset operation and its observable behavior.
//
// Reset may return an error when input validation, dependency calls, or security checks fail.
// Reset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Called on every successful verification.
func (t *LockoutTracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Clear(ctx); err != nil {
		t.writeFailures.Add(1)
		return err
	}
	return nil
}

// EstimateLockout returns the progressive-table duration for the given
// failure count, or 0 below the threshold.
func (t *LockoutTracker) EstimateLockout(failedAttempts int) time.Duration {
	if failedAttempts < t.config.Threshold || len(t.config.Table) == 0 {
		return 0
	}
	idx := failedAttempts - t.config.Threshold
	if idx >= len(t.config.Table) {
		idx = len(t.config.Table) - 1
	}
	return t.config.Table[idx]
}

// WriteFailures reports how many store writes were swallowed. Mirrors the
// audit dispatcher's Dropped counter: advisory persistence must not crash a
// flow, but the loss is observable.
func (t *LockoutTracker) WriteFailures() uint64 {
	return t.writeFailures.Load()
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
