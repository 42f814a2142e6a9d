package adapter

import (
	"context"
	"sync"
	"time"

	"pdf-quiz/internal/domain"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryCacheAdapter implements domain.Cache in process memory. It is the
// default session store for single-instance deployments and the terminal client.
type MemoryCacheAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCacheAdapter creates an empty in-memory cache.
func NewMemoryCacheAdapter() *MemoryCacheAdapter {
	return &MemoryCacheAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements domain.Cache.
func (m *MemoryCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", domain.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// a concurrent Set may have replaced the entry meanwhile
		if current, ok := m.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", domain.ErrCacheMiss
	}
	return entry.value, nil
}

// Set implements domain.Cache.
func (m *MemoryCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete implements domain.Cache.
func (m *MemoryCacheAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Ping implements domain.Cache.
func (m *MemoryCacheAdapter) Ping(ctx context.Context) error {
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryCacheAdapter) Sweep() int {
	now := m.now()
	removed := 0
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryCacheAdapter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

var _ domain.Cache = (*MemoryCacheAdapter)(nil)
