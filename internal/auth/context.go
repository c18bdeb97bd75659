package auth

import (
	"context"
	"errors"

	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// IsUnauthorized reports whether err stems from a backend 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, httpx.ErrUnauthorized)
}
