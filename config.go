package goPin

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goPin APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Policy       PolicyConfig
	Lockout      LockoutConfig
	Gateway      GatewayConfig
	Verification VerificationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
POLICY CONFIG
====================================
*/

// PolicyConfig defines a public type used by goPin APIs.
//
// PolicyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PolicyConfig struct {
	RejectSequential bool
	RejectRepeating  bool
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by goPin APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	// Threshold is the failed-attempt count at which the first lockout tier
	// triggers. Counts below it never lock (callers show "N attempts
	// remaining" instead).
	Threshold int
	// Table holds the progressive lockout durations, indexed by
	// max(0, failures-Threshold) and clamped to the last entry. It is a
	// countdown estimate for display; a server-supplied lockout timestamp
	// always wins.
	Table []time.Duration
	// Namespace distinguishes one logical operator profile from another in a
	// shared store (redis key suffix, file name discriminator).
	Namespace string
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// GatewayConfig defines a public type used by goPin APIs.
//
// GatewayConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GatewayConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// VerificationConfig defines a public type used by goPin APIs.
//
// VerificationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerificationConfig struct {
	CountdownInterval time.Duration
}

// AuditConfig defines a public type used by goPin APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goPin APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultLockoutTable is the progressive lockout-duration ladder applied from
// the third consecutive failure onward.
var DefaultLockoutTable = []time.Duration{
	1 * time.Minute,
	3 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
	480 * time.Minute,
	1440 * time.Minute,
}

func defaultConfig() Config {
	return Config{
		Policy: PolicyConfig{
			RejectSequential: true,
			RejectRepeating:  true,
		},
		Lockout: LockoutConfig{
			Threshold: 3,
			Table:     append([]time.Duration(nil), DefaultLockoutTable...),
			Namespace: "default",
		},
		Gateway: GatewayConfig{
			RequestTimeout: 30 * time.Second,
		},
		Verification: VerificationConfig{
			CountdownInterval: time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Lockout.Table = append([]time.Duration(nil), cfg.Lockout.Table...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.Lockout.Threshold < 1 {
		return errors.New("Lockout Threshold must be >= 1")
	}
	if len(c.Lockout.Table) == 0 {
		return errors.New("Lockout Table must not be empty")
	}
	prev := time.Duration(0)
	for _, d := range c.Lockout.Table {
		if d <= 0 {
			return errors.New("Lockout Table entries must be > 0")
		}
		if d < prev {
			return errors.New("Lockout Table must be non-decreasing")
		}
		prev = d
	}
	if strings.TrimSpace(c.Lockout.Namespace) == "" {
		return errors.New("Lockout Namespace must not be empty")
	}
	if c.Gateway.RequestTimeout <= 0 {
		return errors.New("Gateway RequestTimeout must be > 0")
	}
	if c.Verification.CountdownInterval <= 0 {
		return errors.New("Verification CountdownInterval must be > 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	return nil
}
