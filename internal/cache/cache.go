// Package cache provides an expiring key-value store used for access tokens
// and resolved lyrics.
package cache

import (
	"sync"
	"time"
)

// Store is an expiring key-value store. An expired entry behaves exactly like
// a missing one. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or false if the key is absent or expired.
	Get(key string) (any, bool)

	// Set stores value under key for the given TTL, replacing any previous
	// entry. A TTL of zero or less stores the value without expiry.
	Set(key string, value any, ttl time.Duration)

	// Delete removes the entry for key, if any.
	Delete(key string)
}

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process Store backed by a map. Entries are invalidated
// lazily on read; writes are whole-entry replacements.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Store.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		// Expired entries are misses. Removal happens here rather than on a
		// sweep so the store needs no background goroutine.
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set implements Store.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

// Delete implements Store.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len returns the number of stored entries, including any not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
