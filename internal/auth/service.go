package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/secretwall/secretwall/internal/user"
)

// ErrInvalidCredentials is returned when a username/password pair does not
// match a stored local credential. Unknown users, federated-only users and
// wrong passwords are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUsernameTaken is returned when registering a username that already exists.
var ErrUsernameTaken = errors.New("username already taken")

// Service verifies local credentials against the user store. Password
// material is only ever handled as a bcrypt hash with its per-record salt.
type Service struct {
	users      user.Repository
	bcryptCost int
}

// NewService creates a new credential verification Service.
func NewService(users user.Repository, bcryptCost int) *Service {
	return &Service{
		users:      users,
		bcryptCost: bcryptCost,
	}
}

// Register creates a local user with the given username and password.
// Returns ErrUsernameTaken if the username already exists; the existing
// record is left untouched.
func (s *Service) Register(ctx context.Context, username, rawPassword string) (*user.User, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	hash := string(hashBytes)

	u := &user.User{
		Username:     username,
		PasswordHash: &hash,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

// Login resolves a username/password pair to the stored user record.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user by username: %w", err)
	}

	if u.PasswordHash == nil {
		// Federated-only account, no local credential to compare.
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(rawPassword)) != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
