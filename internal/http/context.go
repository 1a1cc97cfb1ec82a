package http

import (
	"context"

	"github.com/OpenQueue/API/internal/auth"
)

type authCtxKey struct{}

// WithAuth stashes the resolved authorization context on the request.
func WithAuth(ctx context.Context, ac *auth.Context) context.Context {
	return context.WithValue(ctx, authCtxKey{}, ac)
}

// AuthFrom returns the authorization context the middleware attached.
// Handlers behind Authenticate can rely on it being present.
func AuthFrom(ctx context.Context) *auth.Context {
	ac, _ := ctx.Value(authCtxKey{}).(*auth.Context)
	return ac
}
