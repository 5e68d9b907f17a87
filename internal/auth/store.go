package auth

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/desertthunder/spotboard/internal/repositories"
	"github.com/desertthunder/spotboard/internal/shared"
)

// Store persists a single bearer token.
type Store interface {
	// Load returns the persisted token; ok is false when none exists.
	Load(ctx context.Context) (token string, ok bool, err error)
	// Save persists token, overwriting any prior value.
	Save(ctx context.Context, token string) error
	// Clear removes the persisted token.
	Clear(ctx context.Context) error
}

// PersistentStore is a [Store] backed by a file that must be closed.
type PersistentStore interface {
	Store
	io.Closer
}

// NewStore opens the token backend selected by cfg.
func NewStore(cfg shared.TokenConfig) (PersistentStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "sqlite":
		return repositories.OpenTokenRepository(cfg.Path)
	case "bolt", "bbolt":
		return repositories.NewBoltTokenStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: unknown token backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates a [MemoryStore], optionally seeded with a token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Load(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) Close() error { return nil }
