package goPin

import (
	"context"
	"time"
)

// AttemptRecord is the persisted client-side lockout state: the cumulative
// failed-attempt count and the computed lockout expiry, if any. The
// [LockoutTracker] exclusively owns its persisted representation.
type AttemptRecord struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// Clone returns a deep copy of the record.
func (r *AttemptRecord) Clone() *AttemptRecord {
	if r == nil {
		return nil
	}
	out := &AttemptRecord{FailedAttempts: r.FailedAttempts}
	if r.LockedUntil != nil {
		until := *r.LockedUntil
		out.LockedUntil = &until
	}
	return out
}

// LockoutStatus is returned by [LockoutTracker.Status] and
// [Engine.LockoutStatus]. Invariant: RemainingSeconds > 0 iff Locked.
type LockoutStatus struct {
	Locked           bool
	RemainingSeconds int
	FailedAttempts   int
}

// PinStatus is the backend's view of the operator's PIN lifecycle, returned
// by [Engine.PinStatus].
type PinStatus struct {
	RequiresSetup bool
	Expired       bool
}

// VerificationConfirmation is the payload a successful PIN verification
// resolves with. Data carries the server-supplied confirmation record for the
// protected action.
type VerificationConfirmation struct {
	Action string
	Data   map[string]any
}

// SetupConfirmation is returned by a successful first-time PIN setup.
type SetupConfirmation struct {
	UserID string
	Data   map[string]any
}

// ChangeConfirmation is returned by a successful PIN change.
type ChangeConfirmation struct {
	Data map[string]any
}

// AttemptStore persists the advisory lockout record across process restarts.
// Load returns (nil, nil) when no record exists. Implementations must be safe
// for concurrent use; concurrent writers are last-write-wins (the record is
// advisory UX state, not the security boundary).
type AttemptStore interface {
	Load(ctx context.Context) (*AttemptRecord, error)
	Save(ctx context.Context, record *AttemptRecord) error
	Clear(ctx context.Context) error
}

// TokenSource supplies the bearer token the [HTTPGateway] rides on. It is the
// boundary to the host application's auth session: goPin never issues or
// refreshes tokens, it only surfaces [ErrUnauthenticated] so the caller can
// re-authenticate.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Clock abstracts time for deterministic lockout and countdown testing.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
