package goPin

import "errors"

var (
	// ErrPinWrongLength is an exported constant or variable used by the PIN engine.
	ErrPinWrongLength = errors.New("pin must be exactly 6 digits")
	// ErrPinNonDigit is an exported constant or variable used by the PIN engine.
	ErrPinNonDigit = errors.New("pin must contain only digits 0-9")
	// ErrPinSequential is an exported constant or variable used by the PIN engine.
	ErrPinSequential = errors.New("pin must not be a sequential run")
	// ErrPinRepeating is an exported constant or variable used by the PIN engine.
	ErrPinRepeating = errors.New("pin must not repeat a single digit")
	// ErrPinMismatch is an exported constant or variable used by the PIN engine.
	ErrPinMismatch = errors.New("pin confirmation does not match")
	// ErrPinReuse is an exported constant or variable used by the PIN engine.
	ErrPinReuse = errors.New("new pin must be different from current pin")
	// ErrPinIncorrect is an exported constant or variable used by the PIN engine.
	ErrPinIncorrect = errors.New("incorrect pin")
	// ErrPinLocked is an exported constant or variable used by the PIN engine.
	ErrPinLocked = errors.New("pin entry locked")
	// ErrPinSetupRejected is an exported constant or variable used by the PIN engine.
	ErrPinSetupRejected = errors.New("pin setup rejected")
	// ErrPinChangeRejected is an exported constant or variable used by the PIN engine.
	ErrPinChangeRejected = errors.New("pin change rejected")
	// ErrUnauthenticated is an exported constant or variable used by the PIN engine.
	ErrUnauthenticated = errors.New("bearer token missing or expired")
	// ErrGatewayProtocol is an exported constant or variable used by the PIN engine.
	ErrGatewayProtocol = errors.New("pin backend response unparseable")
	// ErrGatewayUnavailable is an exported constant or variable used by the PIN engine.
	ErrGatewayUnavailable = errors.New("pin backend unavailable")
	// ErrVerificationBusy is an exported constant or variable used by the PIN engine.
	ErrVerificationBusy = errors.New("verification request already pending")
	// ErrVerificationCancelled is an exported constant or variable used by the PIN engine.
	ErrVerificationCancelled = errors.New("verification cancelled")
	// ErrVerificationTimeout is an exported constant or variable used by the PIN engine.
	ErrVerificationTimeout = errors.New("verification request timed out")
	// ErrNoPendingRequest is an exported constant or variable used by the PIN engine.
	ErrNoPendingRequest = errors.New("no pending verification request")
	// ErrSetupInvalidState is an exported constant or variable used by the PIN engine.
	ErrSetupInvalidState = errors.New("setup flow not in the expected state")
	// ErrEngineNotReady is an exported constant or variable used by the PIN engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
