package goPin

import (
	"context"
	"errors"
	"testing"
)

func newTestSetupFlow(gw *fakeGateway, onComplete func(pin string)) *PinSetupFlow {
	return newSetupFlow(gw, defaultConfig().Policy, "op-17", nil, onComplete)
}

func TestSetupHappyPath(t *testing.T) {
	var got string
	gw := &fakeGateway{}
	flow := newTestSetupFlow(gw, func(pin string) { got = pin })

	if flow.State() != SetupEnteringPin {
		t.Fatalf("expected SetupEnteringPin, got %v", flow.State())
	}
	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	if flow.State() != SetupConfirmingPin {
		t.Fatalf("expected SetupConfirmingPin, got %v", flow.State())
	}

	confirmation, err := flow.Confirm(context.Background(), "907686")
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if confirmation.UserID != "op-17" {
		t.Fatalf("unexpected confirmation %+v", confirmation)
	}
	if flow.State() != SetupDone {
		t.Fatalf("expected SetupDone, got %v", flow.State())
	}
	if got != "907686" {
		t.Fatalf("onComplete received %q", got)
	}
}

func TestSetupRejectsWeakPin(t *testing.T) {
	flow := newTestSetupFlow(&fakeGateway{}, nil)

	if err := flow.Enter("123456"); !errors.Is(err, ErrPinSequential) {
		t.Fatalf("expected ErrPinSequential, got %v", err)
	}
	if flow.State() != SetupEnteringPin {
		t.Fatalf("rejected entry must stay in SetupEnteringPin, got %v", flow.State())
	}
	if err := flow.Enter("111111"); !errors.Is(err, ErrPinRepeating) {
		t.Fatalf("expected ErrPinRepeating, got %v", err)
	}
}

func TestSetupMismatchWipesAndNeverReachesGateway(t *testing.T) {
	gw := &fakeGateway{}
	flow := newTestSetupFlow(gw, nil)

	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	if _, err := flow.Confirm(context.Background(), "907687"); !errors.Is(err, ErrPinMismatch) {
		t.Fatalf("expected ErrPinMismatch, got %v", err)
	}
	if flow.State() != SetupEnteringPin {
		t.Fatalf("expected SetupEnteringPin after mismatch, got %v", flow.State())
	}

	// The operator starts over from scratch. The same PIN confirms fine on
	// the second walk.
	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("re-Enter failed: %v", err)
	}
	if _, err := flow.Confirm(context.Background(), "907686"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
}

func TestSetupServerRejectionReturnsToEntry(t *testing.T) {
	gw := &fakeGateway{setupErr: ErrPinSetupRejected}
	flow := newTestSetupFlow(gw, nil)

	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	if _, err := flow.Confirm(context.Background(), "907686"); !errors.Is(err, ErrPinSetupRejected) {
		t.Fatalf("expected ErrPinSetupRejected, got %v", err)
	}
	if flow.State() != SetupEnteringPin {
		t.Fatalf("expected SetupEnteringPin after rejection, got %v", flow.State())
	}
}

func TestSetupOnCompleteFiresOnce(t *testing.T) {
	calls := 0
	gw := &fakeGateway{}
	flow := newTestSetupFlow(gw, func(string) { calls++ })

	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	if _, err := flow.Confirm(context.Background(), "907686"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one onComplete call, got %d", calls)
	}

	// A completed flow refuses further input.
	if err := flow.Enter("552901"); !errors.Is(err, ErrSetupInvalidState) {
		t.Fatalf("expected ErrSetupInvalidState, got %v", err)
	}
	if _, err := flow.Confirm(context.Background(), "552901"); !errors.Is(err, ErrSetupInvalidState) {
		t.Fatalf("expected ErrSetupInvalidState, got %v", err)
	}
}

func TestSetupConfirmBeforeEnter(t *testing.T) {
	flow := newTestSetupFlow(&fakeGateway{}, nil)

	if _, err := flow.Confirm(context.Background(), "907686"); !errors.Is(err, ErrSetupInvalidState) {
		t.Fatalf("expected ErrSetupInvalidState, got %v", err)
	}
}

func TestSetupEnterWhileConfirming(t *testing.T) {
	flow := newTestSetupFlow(&fakeGateway{}, nil)

	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	if err := flow.Enter("552901"); !errors.Is(err, ErrSetupInvalidState) {
		t.Fatalf("expected ErrSetupInvalidState, got %v", err)
	}
}

func TestSetupReset(t *testing.T) {
	flow := newTestSetupFlow(&fakeGateway{}, nil)

	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	flow.Reset()
	if flow.State() != SetupEnteringPin {
		t.Fatalf("expected SetupEnteringPin after reset, got %v", flow.State())
	}

	// Reset after completion is a no-op.
	if err := flow.Enter("907686"); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	if _, err := flow.Confirm(context.Background(), "907686"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	flow.Reset()
	if flow.State() != SetupDone {
		t.Fatalf("completed flow must stay SetupDone, got %v", flow.State())
	}
}
