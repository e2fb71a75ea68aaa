package internaldefs

import (
	goPin "github.com/MrEthical07/goPin"
)

// CounterDef defines a public type used by goPin APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goPin.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goPin APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goPin.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the PIN engine.
var CounterDefs = []CounterDef{
	{ID: goPin.MetricVerifySuccess, Name: "gopin_verify_success_total", Help: "Successful PIN verifications."},
	{ID: goPin.MetricVerifyFailure, Name: "gopin_verify_failure_total", Help: "Failed PIN verifications."},
	{ID: goPin.MetricVerifyLocked, Name: "gopin_verify_locked_total", Help: "Verification attempts rejected by an active lockout."},
	{ID: goPin.MetricVerifyBusy, Name: "gopin_verify_busy_total", Help: "Verification requests rejected because one was already pending."},
	{ID: goPin.MetricVerifyCancelled, Name: "gopin_verify_cancelled_total", Help: "Cancelled verification requests."},
	{ID: goPin.MetricVerifyTimeout, Name: "gopin_verify_timeout_total", Help: "Verification attempts that timed out against the backend."},
	{ID: goPin.MetricLockoutTriggered, Name: "gopin_lockout_triggered_total", Help: "Lockouts entered after hitting the failure threshold."},
	{ID: goPin.MetricLockoutReset, Name: "gopin_lockout_reset_total", Help: "Manual lockout resets."},
	{ID: goPin.MetricSetupSuccess, Name: "gopin_setup_success_total", Help: "Successful PIN setups."},
	{ID: goPin.MetricSetupFailure, Name: "gopin_setup_failure_total", Help: "Failed PIN setups."},
	{ID: goPin.MetricPinMismatch, Name: "gopin_pin_mismatch_total", Help: "Setup confirmations that did not match the first entry."},
	{ID: goPin.MetricPolicyRejected, Name: "gopin_policy_rejected_total", Help: "Candidate PINs rejected by the weak-PIN policy."},
	{ID: goPin.MetricChangeSuccess, Name: "gopin_change_success_total", Help: "Successful PIN changes."},
	{ID: goPin.MetricChangeFailure, Name: "gopin_change_failure_total", Help: "Failed PIN changes."},
	{ID: goPin.MetricGatewayUnavailable, Name: "gopin_gateway_unavailable_total", Help: "Gateway calls that failed at the transport layer."},
	{ID: goPin.MetricGatewayProtocolError, Name: "gopin_gateway_protocol_error_total", Help: "Gateway responses that could not be interpreted."},
	{ID: goPin.MetricUnauthenticated, Name: "gopin_unauthenticated_total", Help: "Gateway calls rejected for missing or expired credentials."},
}

// HistogramDefs is an exported constant or variable used by the PIN engine.
var HistogramDefs = []HistogramDef{
	{ID: goPin.MetricVerifyLatency, Name: "gopin_verify_latency_seconds", Help: "Verification round-trip latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the PIN engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the PIN engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
