package prefs

import (
	"context"
	"sync"
)

// MemoryPersister keeps preference blobs in process memory.
type MemoryPersister struct {
	mu    sync.RWMutex
	blobs map[string]Preferences
	saves int
}

// NewMemoryPersister creates an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{blobs: make(map[string]Preferences)}
}

func (m *MemoryPersister) Load(ctx context.Context, name string) (Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.blobs[name]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return Preferences{
		Unit:              p.Unit,
		FavoriteLocations: clone(p.FavoriteLocations),
		RecentSearches:    clone(p.RecentSearches),
	}, nil
}

func (m *MemoryPersister) Save(ctx context.Context, name string, p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = p
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryPersister) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
