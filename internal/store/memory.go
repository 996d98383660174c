package store

import (
	"context"
	"sort"
	"sync"

	"github.com/wealthsim/advisor/internal/domain"
)

// memoryStore is an in-process ProfileStore for the CLI and tests.
type memoryStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

// NewMemory creates an empty in-memory profile store.
func NewMemory() ProfileStore {
	return &memoryStore{profiles: make(map[string]domain.Profile)}
}

func (s *memoryStore) Get(ctx context.Context, id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *memoryStore) Save(ctx context.Context, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile.Clone()
	return nil
}

func (s *memoryStore) List(ctx context.Context) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
