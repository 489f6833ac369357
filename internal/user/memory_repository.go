package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and by local
// development without a database. It favors clarity over performance.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]User)}
}

// Create stores a new user record, assigning its ID and timestamps.
func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
	}

	u.ID = uuid.New()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, ErrUserNotFound
}

// GetByUsername retrieves a single user by its unique username.
func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByGoogleID retrieves a single user by its federated Google subject id.
func (r *MemoryRepository) GetByGoogleID(_ context.Context, googleID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateSecret overwrites the user's secret, last write wins.
func (r *MemoryRepository) UpdateSecret(_ context.Context, id uuid.UUID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}

	u.Secret = &secret
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return nil
}

// ListWithSecrets retrieves all users that have posted a non-empty secret,
// most recently updated first.
func (r *MemoryRepository) ListWithSecrets(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []User{}
	for _, u := range r.users {
		if u.HasSecret() {
			users = append(users, u)
		}
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].UpdatedAt.After(users[j].UpdatedAt)
	})

	return users, nil
}
