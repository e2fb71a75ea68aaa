package goPin

import "context"

type clientIPContextKey struct{}
type operatorIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// when writing audit events for verification and setup outcomes.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithOperatorID attaches the front-desk operator identifier to ctx so
// audit events can name who drove the attempt. It is never sent to the
// PIN backend; the bearer token identifies the session there.
func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorIDContextKey{}, operatorID)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func operatorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	operatorID, _ := ctx.Value(operatorIDContextKey{}).(string)
	return operatorID
}
