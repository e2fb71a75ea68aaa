package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goPin "github.com/MrEthical07/goPin"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// stubGateway verifies against a fixed PIN in-process, so the benchmark
// measures engine and store overhead rather than network latency.
type stubGateway struct {
	pin      string
	failures atomic.Int64
}

func (g *stubGateway) Status(context.Context) (goPin.PinStatus, error) {
	return goPin.PinStatus{}, nil
}

func (g *stubGateway) Setup(_ context.Context, pin, userID string) (goPin.SetupConfirmation, error) {
	return goPin.SetupConfirmation{UserID: userID}, nil
}

func (g *stubGateway) Verify(_ context.Context, pin, action string, _ map[string]any) (goPin.VerificationConfirmation, error) {
	if pin != g.pin {
		n := int(g.failures.Add(1))
		return goPin.VerificationConfirmation{}, &goPin.VerificationError{
			Message:        "Incorrect PIN",
			FailedAttempts: n,
		}
	}
	g.failures.Store(0)
	return goPin.VerificationConfirmation{Action: action}, nil
}

func (g *stubGateway) Change(context.Context, string, string) (goPin.ChangeConfirmation, error) {
	return goPin.ChangeConfirmation{}, nil
}

type terminal struct {
	engine *goPin.Engine
	pin    string
}

func main() {
	var (
		terminals   = flag.Int("terminals", 2000, "number of terminal engines to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (verify + status)")
		wrongPct    = flag.Int("wrong-pct", 2, "percent of verify attempts using a wrong pin")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *terminals <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "terminals, concurrency, and ops must be > 0")
		os.Exit(2)
	}
	if *wrongPct < 0 || *wrongPct > 100 {
		fmt.Fprintln(os.Stderr, "wrong-pct must be between 0 and 100")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	fmt.Printf("seeding %d terminals...\n", *terminals)
	startSeed := time.Now()
	seeds := make([]terminal, *terminals)
	for i := range seeds {
		pin := fmt.Sprintf("%06d", 100000+(i*37)%900000)
		engine, err := buildEngine(client, i, pin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
			os.Exit(1)
		}
		seeds[i] = terminal{engine: engine, pin: pin}
	}
	defer func() {
		for i := range seeds {
			seeds[i].engine.Close()
		}
	}()
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	verifyStats := runVerifyPhase(ctx, seeds, *ops, *concurrency, *wrongPct)
	statusStats := runStatusPhase(ctx, seeds, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("verify", verifyStats)
	printStats("status", statusStats)
}

func buildEngine(client redis.UniversalClient, idx int, pin string) (*goPin.Engine, error) {
	cfg := goPin.Config{
		Policy: goPin.PolicyConfig{
			RejectSequential: true,
			RejectRepeating:  true,
		},
		Lockout: goPin.LockoutConfig{
			Threshold: 3,
			Table:     goPin.DefaultLockoutTable,
			Namespace: fmt.Sprintf("term-%d", idx),
		},
		Gateway: goPin.GatewayConfig{
			RequestTimeout: 30 * time.Second,
		},
		Verification: goPin.VerificationConfig{
			CountdownInterval: time.Second,
		},
		Metrics: goPin.MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}

	return goPin.New().
		WithConfig(cfg).
		WithGateway(&stubGateway{pin: pin}).
		WithRedis(client).
		Build()
}

func runVerifyPhase(ctx context.Context, seeds []terminal, ops, concurrency, wrongPct int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				term := seeds[r.Intn(len(seeds))]
				pin := term.pin
				if r.Intn(100) < wrongPct {
					pin = "000001"
				}
				t0 := time.Now()
				_, err := term.engine.VerifyPin(ctx, pin, "checkin", nil)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runStatusPhase(ctx context.Context, seeds []terminal, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				term := seeds[r.Intn(len(seeds))]
				t0 := time.Now()
				status := term.engine.LockoutStatus(ctx)
				d := time.Since(t0)
				if status.RemainingSeconds < 0 {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
