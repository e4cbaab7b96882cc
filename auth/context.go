package auth

import "context"

// contextKey is a private type for context keys so no other package can
// collide with or forge the caller identity value.
type contextKey string

const callerIDKey contextKey = "callerID"

// WithCallerID returns a child context carrying the authenticated caller's
// user id. Only the middleware writes this value.
func WithCallerID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, callerIDKey, userID)
}

// CallerID extracts the authenticated caller's user id from the context.
// The second return is false when no identity was established.
func CallerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(callerIDKey).(int64)
	return id, ok
}
