package auth

import (
	"context"

	"github.com/marofny/deckhand/internal/core/domain"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const userContextKey contextKey = "user"

// =============================================================================
// Request Context Helpers
// =============================================================================

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom extracts the authenticated user from the context.
// Returns nil and false for unauthenticated requests.
func UserFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
