package userstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL user store.
// It expects the users table to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL user store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Create stores a new user account.
func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`,
		user.ID, user.Username, user.PasswordHash, string(user.Role), now,
	).Scan(&user.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.get(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`, username)
}

// GetByID retrieves a user by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.get(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (s *PostgresStore) get(ctx context.Context, query string, arg any) (*User, error) {
	u := &User{}
	var role string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Role = Role(role)
	return u, nil
}

// Count returns the total number of registered users.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
