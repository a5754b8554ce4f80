package cache

import (
	"context"
	"sync"

	"github.com/okian/brokengap/internal/domain/screening"
)

// Memory is a process-local cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]screening.Candidate
}

// NewMemory returns an empty cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]screening.Candidate)}
}

// Load implements Cache.
func (m *Memory) Load(_ context.Context, key string) ([]screening.Candidate, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cs, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]screening.Candidate(nil), cs...), true, nil
}

// Store implements Cache.
func (m *Memory) Store(_ context.Context, key string, candidates []screening.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]screening.Candidate(nil), candidates...)
	return nil
}

// Len returns the number of stored lists.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
