package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

// AttemptStore persists string values under string keys. Get reports
// whether the key was present.
type AttemptStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type memoryEntry struct {
	value     string
	updatedAt time.Time
}

// MemoryStore keeps attempt state in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e.value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, updatedAt: m.now()}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// CleanupStaleAuthData drops up to batchSize entries, oldest first, that were
// last written before the retention window.
func (m *MemoryStore) CleanupStaleAuthData(_ context.Context, retention time.Duration, batchSize int) (CleanupResult, error) {
	retention, batchSize = cleanupDefaults(retention, batchSize)
	cutoff := m.now().Add(-retention)

	m.mu.Lock()
	defer m.mu.Unlock()

	stale := make([]string, 0)
	for key, e := range m.entries {
		if e.updatedAt.Before(cutoff) {
			stale = append(stale, key)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return m.entries[stale[i]].updatedAt.Before(m.entries[stale[j]].updatedAt)
	})
	if len(stale) > batchSize {
		stale = stale[:batchSize]
	}
	for _, key := range stale {
		delete(m.entries, key)
	}

	return CleanupResult{DeletedAttemptState: int64(len(stale))}, nil
}

func cleanupDefaults(retention time.Duration, batchSize int) (time.Duration, int) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return retention, batchSize
}
