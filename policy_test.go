package goPin

import (
	"errors"
	"testing"
)

func TestValidatePinAcceptsNormalPins(t *testing.T) {
	for _, pin := range []string{"123457", "907686", "112357", "011235"} {
		if err := ValidatePin(pin); err != nil {
			t.Fatalf("expected %q to pass, got %v", pin, err)
		}
	}
}

func TestValidatePinLength(t *testing.T) {
	for _, pin := range []string{"", "12345", "1234567"} {
		if err := ValidatePin(pin); !errors.Is(err, ErrPinWrongLength) {
			t.Fatalf("expected ErrPinWrongLength for %q, got %v", pin, err)
		}
	}
}

func TestValidatePinNonDigit(t *testing.T) {
	for _, pin := range []string{"12345a", "12 456", "abcdef"} {
		if err := ValidatePin(pin); !errors.Is(err, ErrPinNonDigit) {
			t.Fatalf("expected ErrPinNonDigit for %q, got %v", pin, err)
		}
	}
}

func TestValidatePinSequentialBlocklist(t *testing.T) {
	blocked := []string{
		"123456", "234567", "345678", "456789",
		"654321", "765432", "876543", "987654",
	}
	for _, pin := range blocked {
		if err := ValidatePin(pin); !errors.Is(err, ErrPinSequential) {
			t.Fatalf("expected ErrPinSequential for %q, got %v", pin, err)
		}
	}

	// Wrapping runs are not on the list.
	for _, pin := range []string{"890123", "543210", "012345"} {
		if err := ValidatePin(pin); err != nil {
			t.Fatalf("expected %q to pass, got %v", pin, err)
		}
	}
}

func TestValidatePinRepeating(t *testing.T) {
	for _, pin := range []string{"000000", "111111", "999999"} {
		if err := ValidatePin(pin); !errors.Is(err, ErrPinRepeating) {
			t.Fatalf("expected ErrPinRepeating for %q, got %v", pin, err)
		}
	}
}

func TestValidatePinWithDisabledChecks(t *testing.T) {
	cfg := PolicyConfig{RejectSequential: false, RejectRepeating: false}

	if err := validatePinWith(cfg, "123456"); err != nil {
		t.Fatalf("sequential check should be off, got %v", err)
	}
	if err := validatePinWith(cfg, "777777"); err != nil {
		t.Fatalf("repeating check should be off, got %v", err)
	}
	if err := validatePinWith(cfg, "12345"); !errors.Is(err, ErrPinWrongLength) {
		t.Fatalf("length check is not configurable, got %v", err)
	}
}

func TestValidatePinShapeIgnoresWeakness(t *testing.T) {
	if err := validatePinShape("123456"); err != nil {
		t.Fatalf("shape check must accept weak PINs, got %v", err)
	}
	if err := validatePinShape("12345"); !errors.Is(err, ErrPinWrongLength) {
		t.Fatalf("expected ErrPinWrongLength, got %v", err)
	}
}
