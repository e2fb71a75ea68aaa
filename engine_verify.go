package goPin

import (
	"context"
	"errors"
	"time"
)

// VerifyPin describes the verifypin operation and its observable behavior.
//
// VerifyPin may return an error when input validation, dependency calls, or security checks fail.
// VerifyPin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// This is the one-shot path for callers that already hold a complete PIN.
// The lockout tracker is consulted before the gateway is touched and updated
// from the gateway's verdict afterwards. Interactive digit-by-digit entry
// goes through [Engine.Verification] instead.
func (e *Engine) VerifyPin(ctx context.Context, pin, action string, contextData map[string]any) (VerificationConfirmation, error) {
	if e == nil {
		return VerificationConfirmation{}, ErrEngineNotReady
	}
	if err := validatePinShape(pin); err != nil {
		return VerificationConfirmation{}, err
	}

	status := e.tracker.Status(ctx)
	if status.Locked {
		err := &LockedError{RemainingSeconds: status.RemainingSeconds}
		e.flowEvent(ctx, auditEventVerifyLocked, false, action, err)
		return VerificationConfirmation{}, err
	}

	start := time.Now()
	confirmation, err := e.gateway.Verify(ctx, pin, action, contextData)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	if err == nil {
		_ = e.tracker.Reset(ctx)
		e.flowEvent(ctx, auditEventVerifySuccess, true, action, nil)
		return confirmation, nil
	}

	var rejected *VerificationError
	if errors.As(err, &rejected) {
		e.tracker.RecordFailure(ctx, rejected.FailedAttempts, rejected.LockedUntil)
		if e.tracker.Status(ctx).Locked {
			e.flowEvent(ctx, auditEventLockoutTriggered, false, action, err)
		} else {
			e.flowEvent(ctx, auditEventVerifyFailure, false, action, err)
		}
		return VerificationConfirmation{}, err
	}

	e.flowEvent(ctx, auditEventVerifyFailure, false, action, err)
	return VerificationConfirmation{}, err
}
