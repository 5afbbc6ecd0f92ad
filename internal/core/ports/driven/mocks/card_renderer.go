package mocks

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Ensure MockCardRenderer implements CardRenderer
var _ driven.CardRenderer = (*MockCardRenderer)(nil)

// MockCardRenderer renders a minimal card per item for testing.
type MockCardRenderer struct {
	mu       sync.Mutex
	rendered []string

	// FailIDs lists item ids whose render fails
	FailIDs map[string]error
}

// NewMockCardRenderer creates a new MockCardRenderer
func NewMockCardRenderer() *MockCardRenderer {
	return &MockCardRenderer{FailIDs: make(map[string]error)}
}

func (m *MockCardRenderer) RenderCard(ctx context.Context, contentType domain.ContentType, item domain.IndexedItem) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailIDs[item.ID]; ok {
		return "", err
	}
	m.rendered = append(m.rendered, item.ID)
	return fmt.Sprintf(`<article class="card" data-id="%s">%s</article>`, html.EscapeString(item.ID), html.EscapeString(item.Name)), nil
}

// Rendered returns the ids rendered so far, in order
func (m *MockCardRenderer) Rendered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.rendered...)
}
