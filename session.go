package goPin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type staticTokenSource string

// StaticTokenSource returns a [TokenSource] that always yields the given
// token. An empty token yields [ErrUnauthenticated].
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

func (s staticTokenSource) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", ErrUnauthenticated
	}
	return string(s), nil
}

// BearerSession defines a public type used by goPin APIs.
//
// BearerSession instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// It holds the bearer token handed over by the host application's auth
// session. JWT tokens get a local expiry pre-check (claims only, no signature
// verification — that is the server's job) so an expired session surfaces
// [ErrUnauthenticated] before burning a round-trip. Opaque tokens are passed
// through as-is.
type BearerSession struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	clock     Clock
}

// NewBearerSession describes the newbearersession operation and its observable behavior.
//
// NewBearerSession may return an error when input validation, dependency calls, or security checks fail.
// NewBearerSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewBearerSession() *BearerSession {
	return newBearerSessionWithClock(systemClock{})
}

func newBearerSessionWithClock(clock Clock) *BearerSession {
	return &BearerSession{clock: clock}
}

// Authorize describes the authorize operation and its observable behavior.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *BearerSession) Authorize(token string) error {
	if token == "" {
		return ErrUnauthenticated
	}

	var expiresAt time.Time
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}
	// A token that does not parse as a JWT is treated as opaque: stored
	// without a local expiry, the server decides its validity.

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
	return nil
}

// Token describes the token operation and its observable behavior.
//
// Token may return an error when input validation, dependency calls, or security checks fail.
// Token does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *BearerSession) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrUnauthenticated
	}
	if !s.expiresAt.IsZero() && !s.clock.Now().Before(s.expiresAt) {
		return "", fmt.Errorf("%w: token expired at %s", ErrUnauthenticated, s.expiresAt.Format(time.RFC3339))
	}
	return s.token, nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *BearerSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
