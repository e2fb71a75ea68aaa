package goPin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VerificationError is the typed outcome of a rejected PIN attempt. It
// carries the server's authoritative failure count and, once the server has
// locked the account, the lockout expiry, so the [LockoutTracker] can stay in
// sync with server state. It unwraps to [ErrPinLocked] when a lockout
// timestamp is present and to [ErrPinIncorrect] otherwise.
type VerificationError struct {
	Message        string
	FailedAttempts int
	LockedUntil    *time.Time
}

func (e *VerificationError) Error() string {
	if e.LockedUntil != nil {
		return fmt.Sprintf("pin rejected, locked until %s", e.LockedUntil.Format(time.RFC3339))
	}
	return fmt.Sprintf("incorrect pin, %d failed attempts", e.FailedAttempts)
}

func (e *VerificationError) Unwrap() error {
	if e.LockedUntil != nil {
		return ErrPinLocked
	}
	return ErrPinIncorrect
}

// PinGateway is the network boundary: it translates flow intents into
// backend calls and responses into typed results. One request per call, no
// retries — retries, if any, are the caller's responsibility.
type PinGateway interface {
	Status(ctx context.Context) (PinStatus, error)
	Setup(ctx context.Context, pin, userID string) (SetupConfirmation, error)
	Verify(ctx context.Context, pin, action string, contextData map[string]any) (VerificationConfirmation, error)
	Change(ctx context.Context, currentPin, newPin string) (ChangeConfirmation, error)
}

// HTTPGateway defines a public type used by goPin APIs.
//
// HTTPGateway instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	timeout time.Duration
}

// NewHTTPGateway describes the newhttpgateway operation and its observable behavior.
//
// NewHTTPGateway may return an error when input validation, dependency calls, or security checks fail.
// NewHTTPGateway does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHTTPGateway(cfg GatewayConfig, client *http.Client, tokens TokenSource) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		tokens:  tokens,
		timeout: timeout,
	}
}

// gatewayEnvelope is the backend's uniform response shape. Failure bodies for
// verify/change additionally carry the authoritative attempt count and
// lockout expiry.
type gatewayEnvelope struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	FailedAttempts int            `json:"failedAttempts,omitempty"`
	LockoutUntil   *time.Time     `json:"lockoutUntil,omitempty"`
	RequiresSetup  bool           `json:"requiresSetup,omitempty"`
	IsExpired      bool           `json:"isExpired,omitempty"`
}

// Status describes the status operation and its observable behavior.
//
// Status may return an error when input validation, dependency calls, or security checks fail.
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *HTTPGateway) Status(ctx context.Context) (PinStatus, error) {
	env, code, err := g.post(ctx, "/auth/pin-status", struct{}{})
	if err != nil {
		return PinStatus{}, err
	}
	if env == nil {
		return PinStatus{}, gatewayFailure(code, nil, ErrGatewayProtocol)
	}
	if code < 200 || code > 299 {
		return PinStatus{}, gatewayFailure(code, env, ErrGatewayUnavailable)
	}
	return PinStatus{
		RequiresSetup: env.RequiresSetup,
		Expired:       env.IsExpired,
	}, nil
}

// Setup describes the setup operation and its observable behavior.
//
// Setup may return an error when input validation, dependency calls, or security checks fail.
// Setup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *HTTPGateway) Setup(ctx context.Context, pin, userID string) (SetupConfirmation, error) {
	payload := struct {
		Pin    string `json:"pin"`
		UserID string `json:"userId"`
	}{pin, userID}

	env, code, err := g.post(ctx, "/auth/setup-pin", payload)
	if err != nil {
		return SetupConfirmation{}, err
	}
	if code >= 200 && code <= 299 && env != nil && env.Success {
		return SetupConfirmation{UserID: userID, Data: env.Data}, nil
	}
	return SetupConfirmation{}, gatewayFailure(code, env, ErrPinSetupRejected)
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *HTTPGateway) Verify(ctx context.Context, pin, action string, contextData map[string]any) (VerificationConfirmation, error) {
	payload := struct {
		Pin         string         `json:"pin"`
		Action      string         `json:"action"`
		BookingData map[string]any `json:"bookingData,omitempty"`
	}{pin, action, contextData}

	env, code, err := g.post(ctx, "/auth/verify-pin", payload)
	if err != nil {
		return VerificationConfirmation{}, err
	}
	if code >= 200 && code <= 299 && env != nil && env.Success {
		return VerificationConfirmation{Action: action, Data: env.Data}, nil
	}
	if env == nil {
		return VerificationConfirmation{}, gatewayFailure(code, nil, ErrGatewayProtocol)
	}
	// Only a server PIN verdict carries the attempt count or a lockout
	// expiry. An error envelope without either (maintenance page, proxy
	// error) is an outage, not a judgement, and must not feed the tracker.
	if env.FailedAttempts > 0 || env.LockoutUntil != nil {
		return VerificationConfirmation{}, &VerificationError{
			Message:        env.Message,
			FailedAttempts: env.FailedAttempts,
			LockedUntil:    env.LockoutUntil,
		}
	}
	return VerificationConfirmation{}, gatewayFailure(code, env, ErrGatewayUnavailable)
}

// Change describes the change operation and its observable behavior.
//
// Change may return an error when input validation, dependency calls, or security checks fail.
// Change does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *HTTPGateway) Change(ctx context.Context, currentPin, newPin string) (ChangeConfirmation, error) {
	payload := struct {
		CurrentPin string `json:"currentPin"`
		NewPin     string `json:"newPin"`
	}{currentPin, newPin}

	env, code, err := g.post(ctx, "/auth/change-pin", payload)
	if err != nil {
		return ChangeConfirmation{}, err
	}
	if code >= 200 && code <= 299 && env != nil && env.Success {
		return ChangeConfirmation{Data: env.Data}, nil
	}
	// An incorrect current PIN counts toward lockout like any failed attempt.
	if env != nil && (env.FailedAttempts > 0 || env.LockoutUntil != nil) {
		return ChangeConfirmation{}, &VerificationError{
			Message:        env.Message,
			FailedAttempts: env.FailedAttempts,
			LockedUntil:    env.LockoutUntil,
		}
	}
	return ChangeConfirmation{}, gatewayFailure(code, env, ErrPinChangeRejected)
}

// post issues one bearer-authenticated request and decodes the envelope. It
// never retries. The envelope may be nil when the body was unparseable; the
// status code is still returned so callers can classify the failure.
func (g *HTTPGateway) post(ctx context.Context, path string, payload any) (*gatewayEnvelope, int, error) {
	token, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrGatewayProtocol, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, fmt.Errorf("%w: %v", ErrVerificationTimeout, err)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, res.StatusCode, ErrUnauthenticated
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	var env gatewayEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		if res.StatusCode >= 200 && res.StatusCode <= 299 {
			return nil, res.StatusCode, fmt.Errorf("%w: %v", ErrGatewayProtocol, err)
		}
		// Error status with an unparseable body: classify by status alone.
		return nil, res.StatusCode, nil
	}

	return &env, res.StatusCode, nil
}

func gatewayFailure(code int, env *gatewayEnvelope, fallback error) error {
	if env != nil && env.Message != "" {
		return fmt.Errorf("%w: %s", fallback, env.Message)
	}
	if code != 0 {
		return fmt.Errorf("%w: status %d", fallback, code)
	}
	return fallback
}
