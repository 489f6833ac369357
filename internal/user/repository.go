package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUsername is returned when creating a user whose username
// already exists in the store.
var ErrDuplicateUsername = errors.New("username already exists")

// Repository provides operations on the users table.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateSecret(ctx context.Context, id uuid.UUID, secret string) error
	ListWithSecrets(ctx context.Context) ([]User, error)
}
