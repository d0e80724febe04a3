// Package repository provides persistence implementations for accounts and
// media entries: PostgreSQL for deployments and an in-memory store for
// development and tests.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when the username is already taken.
	ErrUserExists = errors.New("user already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresAuthRepository stores accounts in PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new account and returns it with its assigned id.
// A taken username yields ErrUserExists.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, username string, hash []byte) (models.User, error) {
	u := models.User{Username: username, PasswordHash: hash}
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, hash,
	).Scan(&u.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.User{}, ErrUserExists
	}
	if err != nil {
		return models.User{}, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// GetUserByUsername looks an account up by its login name.
func (r *PostgresAuthRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return u, nil
}

// UserExists reports whether an account with the given id exists.
func (r *PostgresAuthRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
		id,
	).Scan(&exists)
	return exists, err
}
