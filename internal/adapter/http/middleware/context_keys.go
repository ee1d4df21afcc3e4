package middleware

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserCtxKey holds the authenticated *domain.User.
	UserCtxKey = ContextKey("user")
)

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserCtxKey, user)
}

// UserFromContext returns the user set by JWTAuth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*domain.User)
	return user, ok && user != nil
}
