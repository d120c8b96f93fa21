// ABOUTME: Session context propagation for request handlers
// ABOUTME: Provides WithSession/SessionFromContext for the HTTP middleware

package auth

import (
	"context"
)

// sessionContextKey is the key type for storing a Session in context.Context.
type sessionContextKey struct{}

// WithSession returns a new context with the session snapshot attached.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext retrieves the Session attached by the middleware,
// returning false if the request was not authenticated.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(Session)
	return sess, ok
}
