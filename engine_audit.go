package goPin

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventVerifySuccess    = "pin_verify_success"
	auditEventVerifyFailure    = "pin_verify_failure"
	auditEventVerifyLocked     = "pin_verify_locked"
	auditEventVerifyBusy       = "pin_verify_busy"
	auditEventVerifyCancelled  = "pin_verify_cancelled"
	auditEventLockoutTriggered = "pin_lockout_triggered"
	auditEventLockoutReset     = "pin_lockout_reset"
	auditEventSetupSuccess     = "pin_setup_success"
	auditEventSetupMismatch    = "pin_setup_mismatch"
	auditEventSetupFailure     = "pin_setup_failure"
	auditEventChangeSuccess    = "pin_change_success"
	auditEventChangeFailure    = "pin_change_failure"
	auditEventPolicyRejected   = "pin_policy_rejected"
	auditEventStatusCheck      = "pin_status_check"
)

// AuditErrorCode defines a public type used by goPin APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrPolicy          AuditErrorCode = "pin_policy"
	auditErrMismatch        AuditErrorCode = "pin_mismatch"
	auditErrReuse           AuditErrorCode = "pin_reuse"
	auditErrIncorrect       AuditErrorCode = "pin_incorrect"
	auditErrLocked          AuditErrorCode = "pin_locked"
	auditErrBusy            AuditErrorCode = "verification_busy"
	auditErrCancelled       AuditErrorCode = "verification_cancelled"
	auditErrTimeout         AuditErrorCode = "verification_timeout"
	auditErrNoPending       AuditErrorCode = "no_pending_request"
	auditErrSetupRejected   AuditErrorCode = "setup_rejected"
	auditErrChangeRejected  AuditErrorCode = "change_rejected"
	auditErrUnauthenticated AuditErrorCode = "unauthenticated"
	auditErrProtocol        AuditErrorCode = "gateway_protocol"
	auditErrUnavailable     AuditErrorCode = "gateway_unavailable"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	action string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		OperatorID: operatorIDFromContext(ctx),
		Action:     action,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrPinWrongLength),
		errors.Is(err, ErrPinNonDigit),
		errors.Is(err, ErrPinSequential),
		errors.Is(err, ErrPinRepeating):
		return auditErrPolicy
	case errors.Is(err, ErrPinMismatch):
		return auditErrMismatch
	case errors.Is(err, ErrPinReuse):
		return auditErrReuse
	case errors.Is(err, ErrPinLocked):
		return auditErrLocked
	case errors.Is(err, ErrPinIncorrect):
		return auditErrIncorrect
	case errors.Is(err, ErrVerificationBusy):
		return auditErrBusy
	case errors.Is(err, ErrVerificationCancelled):
		return auditErrCancelled
	case errors.Is(err, ErrVerificationTimeout):
		return auditErrTimeout
	case errors.Is(err, ErrNoPendingRequest):
		return auditErrNoPending
	case errors.Is(err, ErrPinSetupRejected),
		errors.Is(err, ErrSetupInvalidState):
		return auditErrSetupRejected
	case errors.Is(err, ErrPinChangeRejected):
		return auditErrChangeRejected
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrGatewayProtocol):
		return auditErrProtocol
	case errors.Is(err, ErrGatewayUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
