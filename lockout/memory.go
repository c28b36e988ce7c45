package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps state in process. Entries are dropped once their ttl
// passes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	state   State
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, key string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(key).state, nil
}

// live returns the unexpired entry for key. m.mu must be held.
func (m *MemoryStore) live(key string) memEntry {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return memEntry{}
	}
	return e
}

func (m *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	e.state.Failures++
	if ttl > 0 {
		if exp := m.now().Add(ttl); exp.After(e.expires) {
			e.expires = exp
		}
	}
	m.entries[key] = e
	return e.state.Failures, nil
}

func (m *MemoryStore) Lock(_ context.Context, key string, until time.Time, ttl time.Duration) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e.state.LockedUntil.IsZero() {
		e.state.LockedUntil = until
	}
	if ttl > 0 {
		if exp := m.now().Add(ttl); exp.After(e.expires) {
			e.expires = exp
		}
	}
	m.entries[key] = e
	return e.state.LockedUntil, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
