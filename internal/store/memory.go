package store

import (
	"context"
	"sync"
)

// Memory is an in-process KV used for tests and ephemeral sessions.
type Memory struct {
	mu   sync.RWMutex
	rev  int64
	data map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Revision returns the number of successful PutAll calls.
func (m *Memory) Revision(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rev, nil
}

// PutAll stores every entry if the store is still at rev.
func (m *Memory) PutAll(_ context.Context, rev int64, entries map[string]string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rev != m.rev {
		return 0, ErrConflict
	}
	for k, v := range entries {
		m.data[k] = v
	}
	m.rev++
	return m.rev, nil
}
