package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/spotboard/internal/shared"
)

// TokenRepository persists the bearer token in the SQLite tokens table.
type TokenRepository struct {
	db    *sql.DB
	owned bool
}

// NewTokenRepository creates a [TokenRepository] over an already migrated database.
// The caller keeps ownership of db.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// OpenTokenRepository opens the database at path, applies migrations and returns a repository that closes the database on [TokenRepository.Close].
func OpenTokenRepository(path string) (*TokenRepository, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TokenRepository{db: db, owned: true}, nil
}

// Load returns the persisted token. ok is false when none has been saved.
func (r *TokenRepository) Load(ctx context.Context) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM tokens WHERE key = ?", TokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query token: %w", err)
	}
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Save persists token, overwriting any prior value.
func (r *TokenRepository) Save(ctx context.Context, token string) error {
	token = normalize(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO tokens (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Clearing an empty store is not an error.
func (r *TokenRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE key = ?", TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Close closes the database when the repository opened it.
func (r *TokenRepository) Close() error {
	if !r.owned {
		return nil
	}
	return r.db.Close()
}
