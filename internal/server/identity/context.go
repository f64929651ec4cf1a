package identity

import (
	"context"

	"github.com/iudanet/calcbread/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const userKey contextKey = "user"

// WithUser возвращает контекст с аутентифицированным пользователем
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from context
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
