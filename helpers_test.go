package goPin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []fakeTimer
}

type fakeTimer struct {
	at time.Time
	ch chan time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	at := c.now.Add(d)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, fakeTimer{at: at, ch: ch})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	remaining := c.waiters[:0]
	var due []chan time.Time
	for _, w := range c.waiters {
		if !w.at.After(now) {
			due = append(due, w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
	c.mu.Unlock()

	for _, ch := range due {
		ch <- now
	}
}

type scriptedResult struct {
	confirmation VerificationConfirmation
	err          error
}

// fakeGateway returns scripted verdicts in order and records every call.
type fakeGateway struct {
	mu      sync.Mutex
	results []scriptedResult
	calls   int

	status    PinStatus
	statusErr error
	setupErr  error
	changeErr error
}

func (g *fakeGateway) Status(context.Context) (PinStatus, error) {
	return g.status, g.statusErr
}

func (g *fakeGateway) Setup(_ context.Context, pin, userID string) (SetupConfirmation, error) {
	if g.setupErr != nil {
		return SetupConfirmation{}, g.setupErr
	}
	return SetupConfirmation{UserID: userID}, nil
}

func (g *fakeGateway) Verify(_ context.Context, pin, action string, _ map[string]any) (VerificationConfirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if len(g.results) == 0 {
		return VerificationConfirmation{Action: action}, nil
	}
	r := g.results[0]
	g.results = g.results[1:]
	if r.err != nil {
		return VerificationConfirmation{}, r.err
	}
	if r.confirmation.Action == "" {
		r.confirmation.Action = action
	}
	return r.confirmation, nil
}

func (g *fakeGateway) Change(context.Context, string, string) (ChangeConfirmation, error) {
	if g.changeErr != nil {
		return ChangeConfirmation{}, g.changeErr
	}
	return ChangeConfirmation{}, nil
}

func (g *fakeGateway) verifyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestTracker(t *testing.T, clock Clock) *LockoutTracker {
	t.Helper()

	cfg := defaultConfig().Lockout
	return NewLockoutTracker(NewMemoryAttemptStore(), clock, cfg)
}

func newTestEngine(t *testing.T, gw PinGateway, clock Clock) *Engine {
	t.Helper()

	e, err := New().
		WithGateway(gw).
		WithClock(clock).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return e
}
