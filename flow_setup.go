package goPin

import (
	"context"
	"sync"
)

// SetupState defines a public type used by goPin APIs.
//
// SetupState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SetupState uint8

const (
	// SetupEnteringPin is an exported constant or variable used by the PIN engine.
	SetupEnteringPin SetupState = iota
	// SetupConfirmingPin is an exported constant or variable used by the PIN engine.
	SetupConfirmingPin
	// SetupSubmitting is an exported constant or variable used by the PIN engine.
	SetupSubmitting
	// SetupDone is an exported constant or variable used by the PIN engine.
	SetupDone
)

// PinSetupFlow defines a public type used by goPin APIs.
//
// PinSetupFlow instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// The flow walks one operator through first-time PIN creation:
//
//	SetupEnteringPin -> SetupConfirmingPin -> SetupSubmitting -> SetupDone
//
// A confirmation mismatch or a server rejection returns to
// SetupEnteringPin with both buffers wiped. The weak-PIN policy is applied
// on the first entry, before the operator is asked to confirm anything.
type PinSetupFlow struct {
	mu       sync.Mutex
	state    SetupState
	gateway  PinGateway
	policy   PolicyConfig
	userID   string
	observer flowObserver

	entered string

	// onComplete receives the accepted PIN exactly once, so the session
	// that created it can immediately verify with it. The PIN is never
	// written anywhere else.
	onComplete func(pin string)
}

func newSetupFlow(gateway PinGateway, policy PolicyConfig, userID string, observer flowObserver, onComplete func(pin string)) *PinSetupFlow {
	return &PinSetupFlow{
		gateway:    gateway,
		policy:     policy,
		userID:     userID,
		observer:   observer,
		onComplete: onComplete,
	}
}

// Enter describes the enter operation and its observable behavior.
//
// Enter may return an error when input validation, dependency calls, or security checks fail.
// Enter does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The candidate PIN is checked against the full weak-PIN policy. A rejected
// candidate leaves the flow in SetupEnteringPin with nothing buffered.
func (s *PinSetupFlow) Enter(pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SetupSubmitting:
		return ErrVerificationBusy
	case SetupDone:
		return ErrSetupInvalidState
	case SetupConfirmingPin:
		return ErrSetupInvalidState
	}

	if err := validatePinWith(s.policy, pin); err != nil {
		s.entered = ""
		return err
	}

	s.entered = pin
	s.state = SetupConfirmingPin
	return nil
}

// Confirm describes the confirm operation and its observable behavior.
//
// Confirm may return an error when input validation, dependency calls, or security checks fail.
// Confirm does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A mismatch against the first entry wipes both buffers, returns the flow to
// SetupEnteringPin, and never reaches the gateway.
func (s *PinSetupFlow) Confirm(ctx context.Context, pin string) (SetupConfirmation, error) {
	s.mu.Lock()

	switch s.state {
	case SetupSubmitting:
		s.mu.Unlock()
		return SetupConfirmation{}, ErrVerificationBusy
	case SetupEnteringPin, SetupDone:
		s.mu.Unlock()
		return SetupConfirmation{}, ErrSetupInvalidState
	}

	if pin != s.entered {
		s.entered = ""
		s.state = SetupEnteringPin
		s.mu.Unlock()
		s.observe(ctx, auditEventSetupMismatch, false, ErrPinMismatch)
		return SetupConfirmation{}, ErrPinMismatch
	}

	accepted := s.entered
	s.state = SetupSubmitting
	s.mu.Unlock()

	confirmation, err := s.gateway.Setup(ctx, accepted, s.userID)

	s.mu.Lock()
	if err != nil {
		s.entered = ""
		s.state = SetupEnteringPin
		s.mu.Unlock()
		s.observe(ctx, auditEventSetupFailure, false, err)
		return SetupConfirmation{}, err
	}

	s.entered = ""
	s.state = SetupDone
	onComplete := s.onComplete
	s.onComplete = nil
	s.mu.Unlock()

	if onComplete != nil {
		onComplete(accepted)
	}
	s.observe(ctx, auditEventSetupSuccess, true, nil)
	return confirmation, nil
}

// Reset returns the flow to SetupEnteringPin and wipes any buffered entry.
// A completed flow stays completed.
func (s *PinSetupFlow) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SetupSubmitting || s.state == SetupDone {
		return
	}
	s.entered = ""
	s.state = SetupEnteringPin
}

// State reports the current setup state.
func (s *PinSetupFlow) State() SetupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PinSetupFlow) observe(ctx context.Context, eventType string, success bool, err error) {
	if s.observer == nil {
		return
	}
	s.observer.flowEvent(ctx, eventType, success, "", err)
}
