package store

import (
	"context"
	"sync"
)

// MemoryState keeps everything in a map. Used by tests and the default config.
type MemoryState struct {
	mu sync.RWMutex
	db map[string]string
}

func NewMemoryState() *MemoryState {
	return &MemoryState{db: make(map[string]string)}
}

func (m *MemoryState) Get(_ context.Context, key string) (*string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.db[key]
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (m *MemoryState) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.db[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryState) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.db, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryState) Apply(_ context.Context, muts []Mutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	applyToMap(m.db, muts)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryState) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db)
}

func applyToMap(db map[string]string, muts []Mutation) {
	for _, mut := range muts {
		if mut.Value == nil {
			delete(db, mut.Key)
		} else {
			db[mut.Key] = *mut.Value
		}
	}
}
