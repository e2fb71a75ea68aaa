package goPin

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// FlowState defines a public type used by goPin APIs.
//
// FlowState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowState uint8

const (
	// FlowIdle is an exported constant or variable used by the PIN engine.
	FlowIdle FlowState = iota
	// FlowAwaitingInput is an exported constant or variable used by the PIN engine.
	FlowAwaitingInput
	// FlowSubmitting is an exported constant or variable used by the PIN engine.
	FlowSubmitting
	// FlowLockedOut is an exported constant or variable used by the PIN engine.
	FlowLockedOut
)

type verificationOutcome struct {
	confirmation VerificationConfirmation
	err          error
}

// PendingVerification is the caller's handle on an in-flight verification
// request. It resolves or rejects exactly once — never both, never neither.
type PendingVerification struct {
	ID          string
	Action      string
	Description string
	ContextData map[string]any

	done chan verificationOutcome
	once sync.Once
}

func newPendingVerification(action, description string, contextData map[string]any) *PendingVerification {
	return &PendingVerification{
		ID:          uuid.NewString(),
		Action:      action,
		Description: description,
		ContextData: contextData,
		done:        make(chan verificationOutcome, 1),
	}
}

// Wait blocks until the request resolves, rejects, or ctx is done. The
// outcome is delivered to exactly one waiter.
func (p *PendingVerification) Wait(ctx context.Context) (VerificationConfirmation, error) {
	select {
	case out := <-p.done:
		return out.confirmation, out.err
	case <-ctx.Done():
		return VerificationConfirmation{}, ctx.Err()
	}
}

func (p *PendingVerification) complete(confirmation VerificationConfirmation, err error) {
	p.once.Do(func() {
		p.done <- verificationOutcome{confirmation: confirmation, err: err}
	})
}

// flowObserver receives flow outcomes for audit and metrics. The Engine is
// the production implementation; flows tolerate nil.
type flowObserver interface {
	flowEvent(ctx context.Context, eventType string, success bool, action string, err error)
}

// PinVerificationFlow defines a public type used by goPin APIs.
//
// PinVerificationFlow instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// The flow is a strict single-request state machine:
//
//	FlowIdle -> FlowAwaitingInput -> FlowSubmitting -> (resolved | rejected)
//
// with FlowLockedOut entered when a failure crosses the lockout threshold.
// One instance exists per Engine; a second RequestVerification while one is
// pending is rejected with [ErrVerificationBusy] rather than silently
// replacing the pending handle.
type PinVerificationFlow struct {
	mu       sync.Mutex
	state    FlowState
	tracker  *LockoutTracker
	gateway  PinGateway
	clock    Clock
	config   VerificationConfig
	lockout  LockoutConfig
	observer flowObserver

	pending *PendingVerification
	digits  []byte
}

func newVerificationFlow(
	tracker *LockoutTracker,
	gateway PinGateway,
	clock Clock,
	verification VerificationConfig,
	lockout LockoutConfig,
	observer flowObserver,
) *PinVerificationFlow {
	if clock == nil {
		clock = systemClock{}
	}
	if verification.CountdownInterval <= 0 {
		verification.CountdownInterval = defaultConfig().Verification.CountdownInterval
	}
	return &PinVerificationFlow{
		tracker:  tracker,
		gateway:  gateway,
		clock:    clock,
		config:   verification,
		lockout:  lockout,
		observer: observer,
		digits:   make([]byte, 0, 6),
	}
}

// RequestVerification arms the flow for one elevated-trust check. When the
// tracker reports an active lockout the request is rejected immediately with
// a [*LockedError] and the gateway is never called; no PIN entry happens.
func (f *PinVerificationFlow) RequestVerification(
	ctx context.Context,
	action, description string,
	contextData map[string]any,
) (*PendingVerification, error) {
	f.mu.Lock()
	if f.pending != nil {
		f.mu.Unlock()
		f.observe(ctx, auditEventVerifyBusy, false, action, ErrVerificationBusy)
		return nil, ErrVerificationBusy
	}

	status := f.tracker.Status(ctx)
	if status.Locked {
		f.mu.Unlock()
		err := &LockedError{RemainingSeconds: status.RemainingSeconds}
		f.observe(ctx, auditEventVerifyLocked, false, action, err)
		return nil, err
	}

	pending := newPendingVerification(action, description, contextData)
	f.pending = pending
	f.state = FlowAwaitingInput
	f.digits = f.digits[:0]
	f.mu.Unlock()

	return pending, nil
}

// PushDigit appends one digit to the entry buffer, auto-submitting when the
// sixth digit lands. It returns true when a submission was triggered.
func (f *PinVerificationFlow) PushDigit(ctx context.Context, digit byte) (bool, error) {
	if digit < '0' || digit > '9' {
		return false, ErrPinNonDigit
	}

	f.mu.Lock()
	if err := f.armForInputLocked(ctx); err != nil {
		f.mu.Unlock()
		return false, err
	}

	f.digits = append(f.digits, digit)
	if len(f.digits) < 6 {
		f.mu.Unlock()
		return false, nil
	}

	pin := string(f.digits)
	err := f.submitLocked(ctx, pin)
	return true, err
}

// Backspace removes the most recently entered digit, if any.
func (f *PinVerificationFlow) Backspace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FlowAwaitingInput && len(f.digits) > 0 {
		f.digits = f.digits[:len(f.digits)-1]
	}
}

// EnteredDigits reports how many digits are buffered.
func (f *PinVerificationFlow) EnteredDigits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.digits)
}

// Submit drives one verification attempt with a complete PIN. The weak-PIN
// policy is not reapplied here (policy guards setup only); only the six-digit
// shape is enforced, since the entry UI cannot auto-submit anything else.
func (f *PinVerificationFlow) Submit(ctx context.Context, pin string) error {
	if err := validatePinShape(pin); err != nil {
		return err
	}

	f.mu.Lock()
	if err := f.armForInputLocked(ctx); err != nil {
		f.mu.Unlock()
		return err
	}

	return f.submitLocked(ctx, pin)
}

// submitLocked performs the gateway round-trip. The caller holds f.mu; the
// lock is released for the network call and retaken to apply the outcome.
func (f *PinVerificationFlow) submitLocked(ctx context.Context, pin string) error {
	pending := f.pending
	f.state = FlowSubmitting
	f.digits = f.digits[:0]
	f.mu.Unlock()

	confirmation, err := f.gateway.Verify(ctx, pin, pending.Action, pending.ContextData)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending != pending {
		// The request was cancelled while the response was in flight. The
		// pending handle is already rejected; drop the outcome.
		return ErrVerificationCancelled
	}

	if err == nil {
		_ = f.tracker.Reset(ctx)
		f.pending = nil
		f.state = FlowIdle
		pending.complete(confirmation, nil)
		f.observe(ctx, auditEventVerifySuccess, true, pending.Action, nil)
		return nil
	}

	var rejected *VerificationError
	if errors.As(err, &rejected) {
		f.tracker.RecordFailure(ctx, rejected.FailedAttempts, rejected.LockedUntil)
		if f.tracker.Status(ctx).Locked {
			f.state = FlowLockedOut
			f.observe(ctx, auditEventLockoutTriggered, false, pending.Action, err)
		} else {
			f.state = FlowAwaitingInput
			f.observe(ctx, auditEventVerifyFailure, false, pending.Action, err)
		}
		return err
	}

	if errors.Is(err, ErrUnauthenticated) {
		// The caller must re-authenticate; the cycle cannot continue.
		f.pending = nil
		f.state = FlowIdle
		pending.complete(VerificationConfirmation{}, err)
		f.observe(ctx, auditEventVerifyFailure, false, pending.Action, err)
		return err
	}

	// Transport, protocol, or timeout trouble: re-arm for another attempt,
	// the pending request stays open.
	f.state = FlowAwaitingInput
	f.observe(ctx, auditEventVerifyFailure, false, pending.Action, err)
	return err
}

// Cancel rejects the pending request with [ErrVerificationCancelled] and
// returns the flow to FlowIdle. It is always available except while a
// submission is in flight.
func (f *PinVerificationFlow) Cancel() error {
	f.mu.Lock()
	if f.state == FlowSubmitting {
		f.mu.Unlock()
		return ErrVerificationBusy
	}
	pending := f.pending
	f.pending = nil
	f.state = FlowIdle
	f.digits = f.digits[:0]
	f.mu.Unlock()

	if pending == nil {
		return ErrNoPendingRequest
	}
	pending.complete(VerificationConfirmation{}, ErrVerificationCancelled)
	f.observe(context.Background(), auditEventVerifyCancelled, false, pending.Action, ErrVerificationCancelled)
	return nil
}

// State reports the current flow state.
func (f *PinVerificationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// AttemptsRemaining reports how many failures remain before the first
// lockout tier, for "N attempts remaining" messaging.
func (f *PinVerificationFlow) AttemptsRemaining(ctx context.Context) int {
	status := f.tracker.Status(ctx)
	remaining := f.lockout.Threshold - status.FailedAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Countdown streams the remaining lockout seconds once per tick, recomputed
// from the persisted expiry each time. The channel closes after emitting 0;
// at that point the flow has re-armed and a fresh attempt is permitted.
func (f *PinVerificationFlow) Countdown(ctx context.Context) <-chan int {
	ch := make(chan int, 1)

	go func() {
		defer close(ch)
		for {
			status := f.tracker.Status(ctx)
			if !status.Locked {
				f.rearm()
				select {
				case ch <- 0:
				case <-ctx.Done():
				}
				return
			}

			select {
			case ch <- status.RemainingSeconds:
			case <-ctx.Done():
				return
			}

			select {
			case <-f.clock.After(f.config.CountdownInterval):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// rearm transitions FlowLockedOut back to input once the lockout has expired.
func (f *PinVerificationFlow) rearm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rearmLocked()
}

func (f *PinVerificationFlow) rearmLocked() {
	if f.state != FlowLockedOut {
		return
	}
	if f.pending != nil {
		f.state = FlowAwaitingInput
	} else {
		f.state = FlowIdle
	}
	f.digits = f.digits[:0]
}

// armForInputLocked gates digit entry and submission on the flow state,
// converting a lazily expired lockout back into an input state. The caller
// holds f.mu.
func (f *PinVerificationFlow) armForInputLocked(ctx context.Context) error {
	if f.state == FlowLockedOut {
		status := f.tracker.Status(ctx)
		if status.Locked {
			return &LockedError{RemainingSeconds: status.RemainingSeconds}
		}
		f.rearmLocked()
	}
	switch f.state {
	case FlowIdle:
		return ErrNoPendingRequest
	case FlowSubmitting:
		return ErrVerificationBusy
	}
	return nil
}

func (f *PinVerificationFlow) observe(ctx context.Context, eventType string, success bool, action string, err error) {
	if f.observer == nil {
		return
	}
	f.observer.flowEvent(ctx, eventType, success, action, err)
}
