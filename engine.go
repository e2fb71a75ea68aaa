package goPin

import (
	"context"
	"errors"
)

// Engine defines a public type used by goPin APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// One Engine serves one terminal session against one PIN backend. All
// verification attempts funnel through a single PinVerificationFlow so the
// lockout state machine sees every failure.
type Engine struct {
	config       Config
	store        AttemptStore
	tracker      *LockoutTracker
	gateway      PinGateway
	tokens       TokenSource
	clock        Clock
	audit        *auditDispatcher
	metrics      *Metrics
	verification *PinVerificationFlow
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// flowEvent routes flow outcomes into audit events and counters. It is the
// Engine's side of the flowObserver contract.
func (e *Engine) flowEvent(ctx context.Context, eventType string, success bool, action string, err error) {
	if e == nil {
		return
	}

	switch eventType {
	case auditEventVerifySuccess:
		e.metricInc(MetricVerifySuccess)
	case auditEventVerifyFailure:
		e.metricInc(MetricVerifyFailure)
		e.metricForError(err)
	case auditEventVerifyLocked:
		e.metricInc(MetricVerifyLocked)
	case auditEventVerifyBusy:
		e.metricInc(MetricVerifyBusy)
	case auditEventVerifyCancelled:
		e.metricInc(MetricVerifyCancelled)
	case auditEventLockoutTriggered:
		e.metricInc(MetricVerifyFailure)
		e.metricInc(MetricLockoutTriggered)
	case auditEventLockoutReset:
		e.metricInc(MetricLockoutReset)
	case auditEventSetupSuccess:
		e.metricInc(MetricSetupSuccess)
	case auditEventSetupFailure:
		e.metricInc(MetricSetupFailure)
		e.metricForError(err)
	case auditEventSetupMismatch:
		e.metricInc(MetricPinMismatch)
	case auditEventChangeSuccess:
		e.metricInc(MetricChangeSuccess)
	case auditEventChangeFailure:
		e.metricInc(MetricChangeFailure)
		e.metricForError(err)
	case auditEventPolicyRejected:
		e.metricInc(MetricPolicyRejected)
	}

	e.emitAudit(ctx, eventType, success, action, err, nil)
}

func (e *Engine) metricForError(err error) {
	switch {
	case errors.Is(err, ErrVerificationTimeout):
		e.metricInc(MetricVerifyTimeout)
	case errors.Is(err, ErrGatewayUnavailable):
		e.metricInc(MetricGatewayUnavailable)
	case errors.Is(err, ErrGatewayProtocol):
		e.metricInc(MetricGatewayProtocolError)
	case errors.Is(err, ErrUnauthenticated):
		e.metricInc(MetricUnauthenticated)
	}
}

// Verification returns the engine's verification flow for interactive use:
// arming requests, pushing digits, watching lockout countdowns.
func (e *Engine) Verification() *PinVerificationFlow {
	if e == nil {
		return nil
	}
	return e.verification
}

// Gateway exposes the configured gateway, mainly for composing with custom
// transports in tests and tooling.
func (e *Engine) Gateway() PinGateway {
	if e == nil {
		return nil
	}
	return e.gateway
}
