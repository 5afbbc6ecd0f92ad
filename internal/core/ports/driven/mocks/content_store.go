package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Ensure MockContentStore implements ContentStore
var _ driven.ContentStore = (*MockContentStore)(nil)

// TitleKey is the attribute MockContentStore orders and searches by.
const TitleKey = "title"

type mockContentItem struct {
	id     string
	ct     domain.ContentType
	status string
	attrs  map[string]string
	terms  map[string][]domain.Term
}

// MockContentStore is an in-memory content store for testing.
// Items are created published; use SetStatus to change that.
type MockContentStore struct {
	mu    sync.RWMutex
	items map[string]*mockContentItem

	queryCalls     int
	attributeCalls int

	// Err, when set, is returned by every read
	Err error

	// QueryHook, when set, runs before QueryIDs reads; a non-nil error is returned
	QueryHook func(ctx context.Context) error
}

// NewMockContentStore creates a new MockContentStore
func NewMockContentStore() *MockContentStore {
	return &MockContentStore{
		items: make(map[string]*mockContentItem),
	}
}

// Put creates or replaces an item with the given attributes
func (m *MockContentStore) Put(ct domain.ContentType, id string, attrs map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	m.items[id] = &mockContentItem{
		id:     id,
		ct:     ct,
		status: domain.StatusPublished,
		attrs:  copied,
		terms:  make(map[string][]domain.Term),
	}
}

// PutNamed creates a published item with only a title and permalink
func (m *MockContentStore) PutNamed(ct domain.ContentType, id, title string) {
	m.Put(ct, id, map[string]string{
		TitleKey:    title,
		"permalink": "/" + string(ct) + "/" + id + "/",
	})
}

// SetAttribute updates one attribute of an existing item
func (m *MockContentStore) SetAttribute(id, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.attrs[key] = value
	}
}

// SetStatus updates the status of an existing item
func (m *MockContentStore) SetStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.status = status
	}
}

// SetTerms replaces the terms of an item in one taxonomy
func (m *MockContentStore) SetTerms(id, taxonomy string, terms ...domain.Term) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.terms[taxonomy] = terms
	}
}

// Delete removes an item
func (m *MockContentStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}

// QueryCalls returns how many times QueryIDs was called
func (m *MockContentStore) QueryCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queryCalls
}

// AttributeCalls returns how many times GetAttribute was called
func (m *MockContentStore) AttributeCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attributeCalls
}

func (m *MockContentStore) QueryIDs(ctx context.Context, q domain.ContentQuery) ([]string, error) {
	m.mu.Lock()
	m.queryCalls++
	hook := m.QueryHook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []*mockContentItem
	for _, item := range m.items {
		if item.ct != q.Type {
			continue
		}
		if q.Status != "" && item.status != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.attrs[TitleKey]), search) {
			continue
		}
		if !item.matches(q.Taxonomy) {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.OrderBy == "title" {
			ta, tb := strings.ToLower(a.attrs[TitleKey]), strings.ToLower(b.attrs[TitleKey])
			if ta != tb {
				if q.Order == "DESC" {
					return ta > tb
				}
				return ta < tb
			}
		}
		return a.id < b.id
	})

	ids := make([]string, len(matched))
	for i, item := range matched {
		ids[i] = item.id
	}
	return ids, nil
}

func (item *mockContentItem) matches(filter domain.TaxonomyFilter) bool {
	for _, clause := range filter.Clauses {
		found := false
		for _, term := range item.terms[clause.Taxonomy] {
			value := term.Slug
			if clause.Field == domain.TaxonomyFieldName {
				value = strings.ToLower(term.Name)
			}
			for _, want := range clause.Terms {
				if value == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *MockContentStore) GetAttribute(ctx context.Context, id, key string) (string, error) {
	m.mu.Lock()
	m.attributeCalls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return "", m.Err
	}
	item, ok := m.items[id]
	if !ok {
		return "", nil
	}
	return item.attrs[key], nil
}

func (m *MockContentStore) GetTaxonomyTerms(ctx context.Context, id, taxonomy string) ([]domain.Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return append([]domain.Term(nil), item.terms[taxonomy]...), nil
}

func (m *MockContentStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}
