package auth

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotboard/internal/shared"
)

// Source tells where a resolved token came from.
type Source string

const (
	SourceFragment  Source = "fragment"
	SourcePersisted Source = "persisted"
)

// Resolution is the token a view should use.
type Resolution struct {
	Token  string
	Source Source
}

// Resolve picks the token for a view: a token in fragment wins and is saved to store;
// otherwise the persisted token is used. With neither, it returns [shared.ErrNotAuthenticated]
// and the caller must not attempt authenticated calls.
//
// When a fragment token cannot be saved the returned Resolution is still usable for
// this session and the save error is returned alongside it.
func Resolve(ctx context.Context, fragment string, store Store) (Resolution, error) {
	if token, ok := ExtractFromFragment(fragment); ok {
		res := Resolution{Token: token, Source: SourceFragment}
		if err := store.Save(ctx, token); err != nil {
			return res, fmt.Errorf("failed to persist token: %w", err)
		}
		return res, nil
	}

	token, ok, err := store.Load(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to load token: %w", err)
	}
	if !ok {
		return Resolution{}, fmt.Errorf("%w: no token in fragment or store", shared.ErrNotAuthenticated)
	}

	return Resolution{Token: token, Source: SourcePersisted}, nil
}
