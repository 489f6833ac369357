package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user record. Returns ErrDuplicateUsername if the
// username is already taken.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, password_hash, google_id, secret)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		u.Username,
		u.PasswordHash,
		u.GoogleID,
		u.Secret,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByUsername retrieves a single user by its unique username.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "username = $1", username)
}

// GetByGoogleID retrieves a single user by its federated Google subject id.
func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.getOne(ctx, "google_id = $1", googleID)
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, username, password_hash, google_id, secret, created_at, updated_at
		FROM users
		WHERE ` + where

	var u User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.GoogleID,
		&u.Secret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// UpdateSecret overwrites the user's secret. The previous value is not kept;
// concurrent writers are last-write-wins.
func (r *PostgresRepository) UpdateSecret(ctx context.Context, id uuid.UUID, secret string) error {
	query := `
		UPDATE users
		SET secret = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, secret)
	if err != nil {
		return fmt.Errorf("updating secret: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListWithSecrets retrieves all users that have posted a non-empty secret,
// most recently updated first.
func (r *PostgresRepository) ListWithSecrets(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, password_hash, google_id, secret, created_at, updated_at
		FROM users
		WHERE secret IS NOT NULL AND secret <> ''
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users with secrets: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.Username, &u.PasswordHash, &u.GoogleID,
			&u.Secret, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	if users == nil {
		users = []User{}
	}

	return users, nil
}
