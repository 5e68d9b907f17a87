package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotboard/internal/shared"
	"go.etcd.io/bbolt"
)

var authBucket = []byte("auth")

// BoltTokenStore persists the bearer token in a bbolt file.
type BoltTokenStore struct {
	db *bbolt.DB
}

// NewBoltTokenStore opens (or creates) the bbolt file at path and ensures the auth bucket exists.
func NewBoltTokenStore(path string) (*BoltTokenStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	options := &bbolt.Options{Timeout: 1 * time.Second}
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("could not open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(authBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create auth bucket: %w", err)
	}

	return &BoltTokenStore{db: db}, nil
}

// Load returns the persisted token. ok is false when none has been saved.
func (s *BoltTokenStore) Load(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var token string
	err := s.db.View(func(tx *bbolt.Tx) error {
		// bbolt values are only valid inside the transaction
		if v := tx.Bucket(authBucket).Get([]byte(TokenKey)); v != nil {
			token = string(v)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}

	return token, token != "", nil
}

// Save persists token, overwriting any prior value.
func (s *BoltTokenStore) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token = normalize(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(authBucket).Put([]byte(TokenKey), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the persisted token.
func (s *BoltTokenStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(authBucket).Delete([]byte(TokenKey))
	})
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Close releases the file lock.
func (s *BoltTokenStore) Close() error {
	return s.db.Close()
}
