package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Ensure MockCacheStore implements CacheStore and CacheSweeper
var (
	_ driven.CacheStore   = (*MockCacheStore)(nil)
	_ driven.CacheSweeper = (*MockCacheStore)(nil)
)

type mockCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MockCacheStore is an in-memory TTL cache for testing.
type MockCacheStore struct {
	mu      sync.Mutex
	entries map[string]mockCacheEntry
	now     func() time.Time

	gets int
	sets int

	// Err, when set, is returned by every operation
	Err error
}

// NewMockCacheStore creates a new MockCacheStore
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		entries: make(map[string]mockCacheEntry),
		now:     time.Now,
	}
}

// SetClock overrides the clock used for expiry
func (m *MockCacheStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MockCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.Err != nil {
		return nil, m.Err
	}
	entry, ok := m.entries[key]
	if !ok || !m.now().Before(entry.expiresAt) {
		return nil, domain.ErrCacheMiss
	}
	return append([]byte(nil), entry.value...), nil
}

func (m *MockCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.Err != nil {
		return m.Err
	}
	m.entries[key] = mockCacheEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *MockCacheStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	deleted := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockCacheStore) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	now := m.now()
	swept := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			swept++
		}
	}
	return swept, nil
}

func (m *MockCacheStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// Keys returns the stored keys in sorted order
func (m *MockCacheStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Gets returns how many times Get was called
func (m *MockCacheStore) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// Sets returns how many times Set was called
func (m *MockCacheStore) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
