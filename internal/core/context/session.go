// Package context provides request-scoped values extraction.
package context

import "context"

type sessionKey struct{}

// WithSessionID adds the client session id to context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// GetSessionID returns the client session id or empty string.
func GetSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}
