package goPin

// sequentialPins is the fixed blocklist of ascending/descending runs of six
// consecutive digits. The check is deliberately this literal enumeration, not
// a general "is sequential" test: values like 234568 pass.
var sequentialPins = [8]string{
	"123456",
	"234567",
	"345678",
	"456789",
	"654321",
	"765432",
	"876543",
	"987654",
}

// ValidatePin describes the validatepin operation and its observable behavior.
//
// ValidatePin may return an error when input validation, dependency calls, or security checks fail.
// ValidatePin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ValidatePin(pin string) error {
	return validatePinWith(PolicyConfig{RejectSequential: true, RejectRepeating: true}, pin)
}

func validatePinWith(cfg PolicyConfig, pin string) error {
	if err := validatePinShape(pin); err != nil {
		return err
	}
	if cfg.RejectSequential {
		for _, run := range sequentialPins {
			if pin == run {
				return ErrPinSequential
			}
		}
	}
	if cfg.RejectRepeating && isRepeatingPin(pin) {
		return ErrPinRepeating
	}
	return nil
}

// validatePinShape enforces only the structural invariant (exactly six ASCII
// digits). Verification flows apply this check on entry; the weak-PIN rules
// above apply to setup and change only.
func validatePinShape(pin string) error {
	if len(pin) != 6 {
		return ErrPinWrongLength
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrPinNonDigit
		}
	}
	return nil
}

func isRepeatingPin(pin string) bool {
	for i := 1; i < len(pin); i++ {
		if pin[i] != pin[0] {
			return false
		}
	}
	return true
}
