package state

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	state   State
	expires time.Time
}

// MemoryStore keeps state in process. Entries expire after the TTL when it is
// positive.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, tableID, clientKey string) (*State, error) {
	key := storeKey(tableID, clientKey)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, nil
	}

	s := e.state
	return &s, nil
}

func (m *MemoryStore) Put(_ context.Context, tableID, clientKey string, s *State) error {
	if s == nil {
		return nil
	}
	e := entry{state: *s}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[storeKey(tableID, clientKey)] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, tableID, clientKey string) error {
	m.mu.Lock()
	delete(m.entries, storeKey(tableID, clientKey))
	m.mu.Unlock()
	return nil
}
