package store

import (
	"context"
	"errors"

	"github.com/wealthsim/advisor/internal/domain"
	"github.com/wealthsim/advisor/internal/planner"
)

// ErrNotFound is returned when no profile exists for the requested id.
var ErrNotFound = errors.New("profile not found")

// ProfileStore persists financial profiles. Save is an upsert with
// last-write-wins semantics; concurrent writers for the same user are the
// caller's responsibility to serialize.
type ProfileStore interface {
	Get(ctx context.Context, id string) (domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
	List(ctx context.Context) ([]domain.Profile, error)
}

// PersistFunc adapts a store into the planner's persist callback.
func PersistFunc(ctx context.Context, store ProfileStore) planner.PersistFunc {
	return func(profile domain.Profile) error {
		return store.Save(ctx, profile)
	}
}
