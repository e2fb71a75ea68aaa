// Package goPin provides a client-side engine for 6-digit PIN secondary
// authentication: PIN policy validation, progressive lockout tracking with
// durable local persistence, a typed HTTP gateway to the PIN backend, and
// orchestration flows for verification and first-time setup.
//
// The package is designed for front-of-house hotel software (check-in
// terminals, admin consoles) that must re-confirm staff identity before
// sensitive actions such as check-out, voids, and refunds. Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goPin is a client of the PIN backend, never its source of truth. The server
// enforces the real lockout; client-side lockout state is advisory UX state
// that survives process restarts through an [AttemptStore]. Bearer tokens are
// supplied by the host application's auth session via a [TokenSource]; goPin
// never issues or refreshes tokens.
//
// # What this package must NOT do
//
//   - Persist a PIN in plaintext. PINs exist only transiently in memory
//     during entry and submission.
//   - Retry gateway calls. Every network error surfaces immediately to the
//     caller, which decides messaging and whether to re-arm.
//   - Invent lockout durations when the server supplied one. The local
//     progressive table only estimates a window for countdown display when
//     the server's decision is unavailable.
package goPin
