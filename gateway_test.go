package goPin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*HTTPGateway, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw := NewHTTPGateway(GatewayConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
	}, srv.Client(), StaticTokenSource("test-token"))
	return gw, srv
}

func TestGatewayVerifySuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify-pin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"bookingId": "b-17"},
		})
	})

	confirmation, err := gw.Verify(context.Background(), "907686", "checkin", map[string]any{"roomNumber": "204"})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if confirmation.Action != "checkin" {
		t.Fatalf("unexpected confirmation %+v", confirmation)
	}
	if confirmation.Data["bookingId"] != "b-17" {
		t.Fatalf("expected server data passed through, got %+v", confirmation.Data)
	}

	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotBody["pin"] != "907686" || gotBody["action"] != "checkin" {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
	if booking, ok := gotBody["bookingData"].(map[string]any); !ok || booking["roomNumber"] != "204" {
		t.Fatalf("expected bookingData in request, got %+v", gotBody)
	}
}

func TestGatewayVerifyRejectionCarriesServerState(t *testing.T) {
	lockout := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":        false,
			"message":        "Incorrect PIN",
			"failedAttempts": 2,
			"lockoutUntil":   lockout.Format(time.RFC3339),
		})
	})

	_, err := gw.Verify(context.Background(), "111112", "checkout", nil)
	var rejected *VerificationError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *VerificationError, got %v", err)
	}
	if rejected.FailedAttempts != 2 {
		t.Fatalf("expected failedAttempts=2, got %d", rejected.FailedAttempts)
	}
	if rejected.LockedUntil == nil || !rejected.LockedUntil.Equal(lockout) {
		t.Fatalf("expected lockoutUntil passed through, got %+v", rejected.LockedUntil)
	}
	if !errors.Is(err, ErrPinLocked) {
		t.Fatal("expected lockout rejection to unwrap to ErrPinLocked")
	}
}

func TestGatewayVerifyRejectionWithoutLockout(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":        false,
			"message":        "Incorrect PIN",
			"failedAttempts": 1,
		})
	})

	_, err := gw.Verify(context.Background(), "111112", "checkin", nil)
	if !errors.Is(err, ErrPinIncorrect) {
		t.Fatalf("expected ErrPinIncorrect, got %v", err)
	}
	if errors.Is(err, ErrPinLocked) {
		t.Fatal("unlocked rejection must not unwrap to ErrPinLocked")
	}
}

func TestGatewayUnauthorizedStatuses(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})

		_, err := gw.Verify(context.Background(), "907686", "checkin", nil)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("status %d: expected ErrUnauthenticated, got %v", code, err)
		}
	}
}

func TestGatewayGarbage2xxIsProtocolError(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>totally not json</html>"))
	})

	_, err := gw.Verify(context.Background(), "907686", "checkin", nil)
	if !errors.Is(err, ErrGatewayProtocol) {
		t.Fatalf("expected ErrGatewayProtocol, got %v", err)
	}
}

func TestGatewayGarbage5xxHasNoEnvelope(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := gw.Status(context.Background())
	if !errors.Is(err, ErrGatewayProtocol) {
		t.Fatalf("expected protocol classification for empty envelope, got %v", err)
	}
}

func TestGatewayOutageEnvelopeIsNotAPinVerdict(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "backend under maintenance",
		})
	})

	// A parseable error body without failedAttempts or lockoutUntil never
	// judged the PIN. It must classify as an outage, not a wrong entry.
	_, err := gw.Verify(context.Background(), "907686", "checkin", nil)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if errors.Is(err, ErrPinIncorrect) {
		t.Fatalf("outage must not read as a PIN rejection: %v", err)
	}
	var rejected *VerificationError
	if errors.As(err, &rejected) {
		t.Fatalf("outage must not produce a verification verdict: %+v", rejected)
	}
}

func TestGatewayTimeout(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	gw.timeout = 50 * time.Millisecond

	_, err := gw.Verify(context.Background(), "907686", "checkin", nil)
	if !errors.Is(err, ErrVerificationTimeout) {
		t.Fatalf("expected ErrVerificationTimeout, got %v", err)
	}
}

func TestGatewayDoesNotRetry(t *testing.T) {
	var calls int
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _ = gw.Verify(context.Background(), "907686", "checkin", nil)
	if calls != 1 {
		t.Fatalf("gateway must issue exactly one request, got %d", calls)
	}
}

func TestGatewayStatusProbe(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/pin-status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":       true,
			"requiresSetup": true,
			"isExpired":     false,
		})
	})

	status, err := gw.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.RequiresSetup || status.Expired {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestGatewaySetupRejected(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/setup-pin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "PIN already configured",
		})
	})

	_, err := gw.Setup(context.Background(), "907686", "u-1")
	if !errors.Is(err, ErrPinSetupRejected) {
		t.Fatalf("expected ErrPinSetupRejected, got %v", err)
	}
}

func TestGatewayChangeWrongCurrentPinFeedsLockout(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/change-pin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":        false,
			"message":        "Current PIN incorrect",
			"failedAttempts": 1,
		})
	})

	_, err := gw.Change(context.Background(), "111112", "907686")
	var rejected *VerificationError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *VerificationError, got %v", err)
	}
	if rejected.FailedAttempts != 1 {
		t.Fatalf("expected failedAttempts=1, got %d", rejected.FailedAttempts)
	}
}

func TestGatewayChangePlainRejection(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "New PIN does not meet policy",
		})
	})

	_, err := gw.Change(context.Background(), "907686", "111112")
	if !errors.Is(err, ErrPinChangeRejected) {
		t.Fatalf("expected ErrPinChangeRejected, got %v", err)
	}
}

func TestGatewayEmptyTokenIsUnauthenticated(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server without a token")
	})
	gw.tokens = StaticTokenSource("")

	_, err := gw.Verify(context.Background(), "907686", "checkin", nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
