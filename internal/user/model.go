package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table. A user holds a local password
// credential, a federated Google identity, or both; the secret is the single
// free-text value the user may post and overwrite.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash *string // nil for federated-only users
	GoogleID     *string // nil for locally-registered users
	Secret       *string // nil until the first submission
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSecret reports whether the user has posted a non-empty secret.
func (u *User) HasSecret() bool {
	return u.Secret != nil && *u.Secret != ""
}
