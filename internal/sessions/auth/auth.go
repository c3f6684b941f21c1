// Package auth carries the authenticated admin session through a request.
// Domain handlers depend on Guard rather than on the sessions service.
package auth

import (
	"context"

	"sweethomes/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type contextKey struct{}

// Guard wraps a handler so it only runs for an authenticated session.
type Guard interface {
	Require(next httprouter.Handle) httprouter.Handle
}

func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}

func FromContext(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*model.Session)
	return session, ok && session != nil
}

// Token returns the backend token of the session on ctx, or "".
func Token(ctx context.Context) string {
	if session, ok := FromContext(ctx); ok {
		return session.Token
	}
	return ""
}

// SessionID returns the id of the session on ctx, or "".
func SessionID(ctx context.Context) string {
	if session, ok := FromContext(ctx); ok {
		return session.ID
	}
	return ""
}
