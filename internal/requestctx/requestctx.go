// Package requestctx carries the request correlation id on contexts so it
// can flow from middleware into logs and response envelopes.
package requestctx

import "context"

type contextKey int

const requestIDKey contextKey = iota

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the correlation id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
