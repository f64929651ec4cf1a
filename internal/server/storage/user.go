package storage

import (
	"context"

	"github.com/iudanet/calcbread/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user and fills user.ID and user.CreatedAt.
	// Returns ErrEmailTaken or ErrUsernameTaken on unique constraint violation
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// DeleteUser deletes user by ID together with all owned calculations
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, id int64) error
}
