package auth

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/entity"
)

type contextKey struct {
	name string
}

var userCtxKey = &contextKey{"user"}

// WithUser sets the resolved user in the given context.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext finds the resolved user in the context.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*entity.User)
	return u, ok && u != nil
}
