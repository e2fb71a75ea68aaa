package goPin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": "operator-1",
		"exp": expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return token
}

func TestStaticTokenSource(t *testing.T) {
	src := StaticTokenSource("abc")
	token, err := src.Token(context.Background())
	if err != nil || token != "abc" {
		t.Fatalf("unexpected result %q, %v", token, err)
	}

	if _, err := StaticTokenSource("").Token(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
}

func TestBearerSessionEmptyIsUnauthenticated(t *testing.T) {
	session := NewBearerSession()
	if _, err := session.Token(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestBearerSessionJWTExpiryPreCheck(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	session := newBearerSessionWithClock(clock)

	token := signedToken(t, clock.Now().Add(time.Hour))
	if err := session.Authorize(token); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	got, err := session.Token(context.Background())
	if err != nil || got != token {
		t.Fatalf("expected live token back, got %q, %v", got, err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := session.Token(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after expiry, got %v", err)
	}
}

func TestBearerSessionOpaqueTokenHasNoLocalExpiry(t *testing.T) {
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	session := newBearerSessionWithClock(clock)

	if err := session.Authorize("opaque-session-id"); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	clock.Advance(100 * 24 * time.Hour)
	got, err := session.Token(context.Background())
	if err != nil || got != "opaque-session-id" {
		t.Fatalf("opaque tokens never expire locally, got %q, %v", got, err)
	}
}

func TestBearerSessionAuthorizeRejectsEmpty(t *testing.T) {
	session := NewBearerSession()
	if err := session.Authorize(""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestBearerSessionClear(t *testing.T) {
	session := NewBearerSession()
	if err := session.Authorize("opaque"); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	session.Clear()

	if _, err := session.Token(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after Clear, got %v", err)
	}
}
