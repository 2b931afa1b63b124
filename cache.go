package apikit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// staleRetention is how long an expired entry stays usable as a fallback
// for a failed refetch.
const staleRetention = time.Hour

// Cache stores encoded query results. Get reports whether the entry is
// still fresh; entries past their TTL remain readable (stale) until the
// retention window closes.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, fresh bool, ok bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	staleAt time.Time
	dropAt  time.Time
}

func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, false
	}
	now := time.Now()
	if now.After(entry.dropAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, false
	}
	return entry.data, now.Before(entry.staleAt), true
}

func (m *memoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		data:    append([]byte(nil), data...),
		staleAt: now.Add(ttl),
		dropAt:  now.Add(ttl + staleRetention),
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}
