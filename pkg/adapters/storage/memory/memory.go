package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aescanero/modhub/internal/domain"
)

// ModStorage implements ports.ModStore with an in-memory slice.
// Contents are lost when the process exits.
type ModStorage struct {
	mods   []domain.Mod
	nextID int
	mu     sync.RWMutex
}

// NewModStorage creates an empty in-memory mod storage
func NewModStorage() *ModStorage {
	return &ModStorage{nextID: 1}
}

// List returns copies of all mods in insertion order
func (s *ModStorage) List(ctx context.Context) ([]domain.Mod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mods := make([]domain.Mod, len(s.mods))
	for i, m := range s.mods {
		mods[i] = m.Clone()
	}
	return mods, nil
}

// Get returns a copy of the mod with the given id
func (s *ModStorage) Get(ctx context.Context, id int) (*domain.Mod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("mod %d: %w", id, domain.ErrModNotFound)
	}
	m := s.mods[i].Clone()
	return &m, nil
}

// Create appends mod under the next id
func (s *ModStorage) Create(ctx context.Context, mod domain.Mod) (*domain.Mod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod = mod.Clone()
	mod.ID = s.nextID
	s.nextID++
	s.mods = append(s.mods, mod)

	created := mod.Clone()
	return &created, nil
}

// Update applies fn to the stored mod. The id cannot be changed by fn.
func (s *ModStorage) Update(ctx context.Context, id int, fn func(*domain.Mod) error) (*domain.Mod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("mod %d: %w", id, domain.ErrModNotFound)
	}

	m := s.mods[i].Clone()
	if err := fn(&m); err != nil {
		return nil, err
	}
	m.ID = id
	s.mods[i] = m

	updated := m.Clone()
	return &updated, nil
}

// Delete removes the mod with the given id
func (s *ModStorage) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("mod %d: %w", id, domain.ErrModNotFound)
	}
	s.mods = append(s.mods[:i], s.mods[i+1:]...)
	return nil
}

// Replace swaps the whole collection
func (s *ModStorage) Replace(ctx context.Context, mods []domain.Mod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range mods {
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}

	replaced := make([]domain.Mod, len(mods))
	for i, m := range mods {
		m = m.Clone()
		if m.ID == 0 {
			m.ID = s.nextID
			s.nextID++
		}
		replaced[i] = m
	}
	s.mods = replaced
	return nil
}

// Count returns the number of stored mods
func (s *ModStorage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.mods), nil
}

// indexOf must be called with s.mu held
func (s *ModStorage) indexOf(id int) int {
	for i := range s.mods {
		if s.mods[i].ID == id {
			return i
		}
	}
	return -1
}
