package common

import (
	"context"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	AccountID   string
	Role        Role
	DisplayName string
	SessionID   string
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

// SessionWatcher reports the end of a signed-in session, wherever the
// sign-out happened.
type SessionWatcher interface {
	WatchSession(sessionID string, onEnd func()) (stop func(), err error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
