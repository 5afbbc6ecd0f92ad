package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Ensure MockVersionStore implements VersionStore
var _ driven.VersionStore = (*MockVersionStore)(nil)

// MockVersionStore is an in-memory version store for testing.
type MockVersionStore struct {
	mu       sync.Mutex
	versions map[domain.ContentType]int64

	// Custom behavior hooks (optional)
	GetErr       error
	IncrementErr error
}

// NewMockVersionStore creates a new MockVersionStore
func NewMockVersionStore() *MockVersionStore {
	return &MockVersionStore{
		versions: make(map[domain.ContentType]int64),
	}
}

func (m *MockVersionStore) Get(ctx context.Context, contentType domain.ContentType) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return 0, false, m.GetErr
	}
	v, ok := m.versions[contentType]
	return v, ok, nil
}

func (m *MockVersionStore) Increment(ctx context.Context, contentType domain.ContentType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrementErr != nil {
		return 0, m.IncrementErr
	}
	if _, ok := m.versions[contentType]; !ok {
		m.versions[contentType] = 1
	}
	m.versions[contentType]++
	return m.versions[contentType], nil
}

func (m *MockVersionStore) List(ctx context.Context) (map[domain.ContentType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	out := make(map[domain.ContentType]int64, len(m.versions))
	for k, v := range m.versions {
		out[k] = v
	}
	return out, nil
}
