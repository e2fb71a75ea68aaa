package goPin

import (
	"context"
	"errors"
)

// NewSetupFlow describes the newsetupflow operation and its observable behavior.
//
// NewSetupFlow may return an error when input validation, dependency calls, or security checks fail.
// NewSetupFlow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned flow walks one operator through enter-then-confirm PIN
// creation. onComplete, when non-nil, receives the accepted PIN exactly once
// so the creating session can verify without re-prompting; the engine never
// stores it.
func (e *Engine) NewSetupFlow(userID string, onComplete func(pin string)) *PinSetupFlow {
	if e == nil {
		return nil
	}
	return newSetupFlow(e.gateway, e.config.Policy, userID, e, onComplete)
}

// SetupPin describes the setuppin operation and its observable behavior.
//
// SetupPin may return an error when input validation, dependency calls, or security checks fail.
// SetupPin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// One-shot setup for callers that collected both entries themselves. The
// confirmation entry must match or nothing is sent.
func (e *Engine) SetupPin(ctx context.Context, pin, confirm, userID string) (SetupConfirmation, error) {
	if e == nil {
		return SetupConfirmation{}, ErrEngineNotReady
	}

	if err := validatePinWith(e.config.Policy, pin); err != nil {
		e.flowEvent(ctx, auditEventPolicyRejected, false, "", err)
		return SetupConfirmation{}, err
	}
	if pin != confirm {
		e.flowEvent(ctx, auditEventSetupMismatch, false, "", ErrPinMismatch)
		return SetupConfirmation{}, ErrPinMismatch
	}

	confirmation, err := e.gateway.Setup(ctx, pin, userID)
	if err != nil {
		e.flowEvent(ctx, auditEventSetupFailure, false, "", err)
		return SetupConfirmation{}, err
	}

	e.flowEvent(ctx, auditEventSetupSuccess, true, "", nil)
	return confirmation, nil
}

// ChangePin describes the changepin operation and its observable behavior.
//
// ChangePin may return an error when input validation, dependency calls, or security checks fail.
// ChangePin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The new PIN is policy-validated locally and must differ from the current
// one before the gateway is asked. A wrong current PIN counts as a failed
// attempt and feeds the lockout tracker like any verification failure.
func (e *Engine) ChangePin(ctx context.Context, currentPin, newPin string) (ChangeConfirmation, error) {
	if e == nil {
		return ChangeConfirmation{}, ErrEngineNotReady
	}

	if err := validatePinShape(currentPin); err != nil {
		return ChangeConfirmation{}, err
	}
	if err := validatePinWith(e.config.Policy, newPin); err != nil {
		e.flowEvent(ctx, auditEventPolicyRejected, false, "", err)
		return ChangeConfirmation{}, err
	}
	if newPin == currentPin {
		e.flowEvent(ctx, auditEventChangeFailure, false, "", ErrPinReuse)
		return ChangeConfirmation{}, ErrPinReuse
	}

	status := e.tracker.Status(ctx)
	if status.Locked {
		err := &LockedError{RemainingSeconds: status.RemainingSeconds}
		e.flowEvent(ctx, auditEventVerifyLocked, false, "", err)
		return ChangeConfirmation{}, err
	}

	confirmation, err := e.gateway.Change(ctx, currentPin, newPin)
	if err == nil {
		_ = e.tracker.Reset(ctx)
		e.flowEvent(ctx, auditEventChangeSuccess, true, "", nil)
		return confirmation, nil
	}

	var rejected *VerificationError
	if errors.As(err, &rejected) {
		e.tracker.RecordFailure(ctx, rejected.FailedAttempts, rejected.LockedUntil)
		if e.tracker.Status(ctx).Locked {
			e.flowEvent(ctx, auditEventLockoutTriggered, false, "", err)
			return ChangeConfirmation{}, err
		}
	}

	e.flowEvent(ctx, auditEventChangeFailure, false, "", err)
	return ChangeConfirmation{}, err
}
