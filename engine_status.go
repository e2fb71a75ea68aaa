package goPin

import "context"

// PinStatus describes the pinstatus operation and its observable behavior.
//
// PinStatus may return an error when input validation, dependency calls, or security checks fail.
// PinStatus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The probe tells the caller whether the operator still needs first-time
// setup or a forced rotation before verification can proceed.
func (e *Engine) PinStatus(ctx context.Context) (PinStatus, error) {
	if e == nil {
		return PinStatus{}, ErrEngineNotReady
	}

	status, err := e.gateway.Status(ctx)
	if err != nil {
		e.flowEvent(ctx, auditEventStatusCheck, false, "", err)
		return PinStatus{}, err
	}

	e.flowEvent(ctx, auditEventStatusCheck, true, "", nil)
	return status, nil
}

// LockoutStatus describes the lockoutstatus operation and its observable behavior.
//
// LockoutStatus may return an error when input validation, dependency calls, or security checks fail.
// LockoutStatus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LockoutStatus(ctx context.Context) LockoutStatus {
	if e == nil {
		return LockoutStatus{}
	}
	return e.tracker.Status(ctx)
}

// ResetLockout describes the resetlockout operation and its observable behavior.
//
// ResetLockout may return an error when input validation, dependency calls, or security checks fail.
// ResetLockout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Manual unlock for supervisor overrides. The failure count is cleared, not
// just the lock expiry.
func (e *Engine) ResetLockout(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.tracker.Reset(ctx); err != nil {
		return err
	}
	e.flowEvent(ctx, auditEventLockoutReset, true, "", nil)
	return nil
}
