// Package authctx carries the authenticated user through a context.Context.
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/voicegate/auth"
)

type contextKey struct{}

// ErrNoUser is returned when the context holds no user.
var ErrNoUser = errors.New("authctx: no user in context")

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// User returns the user stored in ctx.
func User(ctx context.Context) (*auth.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*auth.User)
	return user, ok && user != nil
}

// UserOrError is User with ErrNoUser for a missing user.
func UserOrError(ctx context.Context) (*auth.User, error) {
	user, ok := User(ctx)
	if !ok {
		return nil, ErrNoUser
	}
	return user, nil
}
