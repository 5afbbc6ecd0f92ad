package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ContentStore = (*ContentStore)(nil)

// titleKey is served from content_items.title rather than content_attributes
const titleKey = "title"

// searchAttributeKey is matched by search alongside the title
const searchAttributeKey = "excerpt"

// ContentStore implements driven.ContentStore over the content_* tables
type ContentStore struct {
	db *DB
}

// NewContentStore creates a new ContentStore
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

// QueryIDs returns every matching id, unpaginated
func (s *ContentStore) QueryIDs(ctx context.Context, q domain.ContentQuery) ([]string, error) {
	query, args := buildQueryIDs(q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w: %w", q.Type, domain.ErrContentStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", q.Type, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s ids: %w", q.Type, err)
	}
	return ids, nil
}

// buildQueryIDs renders a ContentQuery as SQL. Terms within a clause match
// any of the listed values; clauses must all match.
func buildQueryIDs(q domain.ContentQuery) (string, []any) {
	var b strings.Builder
	args := []any{string(q.Type)}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString("SELECT i.id FROM content_items i WHERE i.content_type = $1")

	if q.Status != "" {
		b.WriteString(" AND i.status = " + arg(q.Status))
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := arg("%" + escapeLike(search) + "%")
		b.WriteString(" AND (i.title ILIKE " + pattern + ` ESCAPE '\'`)
		b.WriteString(" OR EXISTS (SELECT 1 FROM content_attributes a WHERE a.item_id = i.id AND a.key = ")
		b.WriteString(arg(searchAttributeKey) + " AND a.value ILIKE " + pattern + ` ESCAPE '\'))`)
	}

	for _, clause := range q.Taxonomy.Clauses {
		column := "t.slug"
		if clause.Field == domain.TaxonomyFieldName {
			column = "lower(t.name)"
		}
		b.WriteString(" AND EXISTS (SELECT 1 FROM content_terms t WHERE t.item_id = i.id AND t.taxonomy = ")
		b.WriteString(arg(clause.Taxonomy) + " AND " + column + " = ANY(" + arg(pq.Array(clause.Terms)) + "))")
	}

	order := "ASC"
	if strings.EqualFold(q.Order, "DESC") {
		order = "DESC"
	}
	if q.OrderBy == "title" {
		b.WriteString(" ORDER BY lower(i.title) " + order + ", i.id ASC")
	} else {
		b.WriteString(" ORDER BY i.id " + order)
	}

	return b.String(), args
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetAttribute returns one attribute; missing items and keys yield ""
func (s *ContentStore) GetAttribute(ctx context.Context, id, key string) (string, error) {
	query := `SELECT value FROM content_attributes WHERE item_id = $1 AND key = $2`
	args := []any{id, key}
	if key == titleKey {
		query = `SELECT title FROM content_items WHERE id = $1`
		args = args[:1]
	}

	var value string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get attribute %s of %s: %w", key, id, err)
	}
	return value, nil
}

// GetTaxonomyTerms returns the item's terms ordered by name
func (s *ContentStore) GetTaxonomyTerms(ctx context.Context, id, taxonomy string) ([]domain.Term, error) {
	query := `
		SELECT name, slug
		FROM content_terms
		WHERE item_id = $1 AND taxonomy = $2
		ORDER BY name, slug
	`
	rows, err := s.db.QueryContext(ctx, query, id, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("get terms %s of %s: %w", taxonomy, id, err)
	}
	defer rows.Close()

	var terms []domain.Term
	for rows.Next() {
		var term domain.Term
		if err := rows.Scan(&term.Name, &term.Slug); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// Ping checks if the content database is reachable
func (s *ContentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
