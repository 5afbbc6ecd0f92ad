package domain

import (
	"regexp"
	"sort"
	"strings"
)

// Transport-layer parameter names
const (
	ParamLetter      = "letter"
	ParamSearch      = "search"
	ParamSearchAlias = "q"
	ParamTaxonomy    = "tax"
	ParamPaged       = "paged"
	ParamPage        = "page"
	ParamPerPage     = "per_page"
)

// Pagination and search limits
const (
	DefaultPerPage  = 24
	MaxPerPage      = 100
	MaxSearchLength = 100
)

// Taxonomy match fields
const (
	TaxonomyFieldSlug = "slug"
	TaxonomyFieldName = "name"
)

var (
	taxonomyNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
	termSlugPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
)

// QueryState is the fully resolved, validated filter state of one request.
type QueryState struct {
	Letter   Letter         `json:"letter"`
	Search   string         `json:"search"`
	Taxonomy TaxonomyFilter `json:"taxonomy"`
	Page     int            `json:"page"`
	PerPage  int            `json:"per_page"`
}

// TaxonomyClause restricts items to those tagged with any of Terms in Taxonomy.
type TaxonomyClause struct {
	Taxonomy string   `json:"taxonomy"`
	Field    string   `json:"field"`
	Terms    []string `json:"terms"`
}

// TaxonomyFilter is a conjunction of taxonomy clauses.
// Construct it with NewTaxonomyFilter or ParseTaxonomyFilter so it stays canonical.
type TaxonomyFilter struct {
	Clauses []TaxonomyClause `json:"clauses,omitempty"`
}

// NewTaxonomyFilter validates and canonicalises clauses. Invalid taxonomies,
// fields and terms are dropped; clauses on the same taxonomy and field are
// merged; terms are lower-cased, de-duplicated and sorted.
func NewTaxonomyFilter(clauses ...TaxonomyClause) TaxonomyFilter {
	merged := make(map[string]map[string]bool)
	var order []string

	for _, c := range clauses {
		taxonomy := strings.ToLower(strings.TrimSpace(c.Taxonomy))
		if !taxonomyNamePattern.MatchString(taxonomy) {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(c.Field))
		if field == "" {
			field = TaxonomyFieldSlug
		}
		if field != TaxonomyFieldSlug && field != TaxonomyFieldName {
			continue
		}

		key := taxonomy + "." + field
		for _, term := range c.Terms {
			term, ok := normalizeTerm(field, term)
			if !ok {
				continue
			}
			if merged[key] == nil {
				merged[key] = make(map[string]bool)
				order = append(order, key)
			}
			merged[key][term] = true
		}
	}

	filter := TaxonomyFilter{}
	for _, key := range order {
		taxonomy, field, _ := strings.Cut(key, ".")
		terms := make([]string, 0, len(merged[key]))
		for term := range merged[key] {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		filter.Clauses = append(filter.Clauses, TaxonomyClause{Taxonomy: taxonomy, Field: field, Terms: terms})
	}
	filter.sortClauses()
	return filter
}

func normalizeTerm(field, term string) (string, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if field == TaxonomyFieldSlug {
		return term, termSlugPattern.MatchString(term)
	}
	term = strings.Join(strings.Fields(term), " ")
	if term == "" || len(term) > 64 || strings.ContainsAny(term, ",;:|") {
		return "", false
	}
	return term, true
}

// ParseTaxonomyFilter parses the compact form "taxonomy:term[,term];taxonomy2:term".
// A taxonomy may name its match field as "taxonomy.name:Term". Malformed
// clauses are dropped silently.
func ParseTaxonomyFilter(compact string) TaxonomyFilter {
	var clauses []TaxonomyClause
	for _, part := range strings.Split(compact, ";") {
		name, terms, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		taxonomy, field, _ := strings.Cut(strings.TrimSpace(name), ".")
		clauses = append(clauses, TaxonomyClause{
			Taxonomy: taxonomy,
			Field:    field,
			Terms:    strings.Split(terms, ","),
		})
	}
	return NewTaxonomyFilter(clauses...)
}

// TaxonomyFilterFromMap builds a slug filter from a taxonomy -> terms map.
func TaxonomyFilterFromMap(m map[string][]string) TaxonomyFilter {
	clauses := make([]TaxonomyClause, 0, len(m))
	for taxonomy, terms := range m {
		clauses = append(clauses, TaxonomyClause{Taxonomy: taxonomy, Field: TaxonomyFieldSlug, Terms: terms})
	}
	return NewTaxonomyFilter(clauses...)
}

// IsEmpty reports whether the filter has no clauses
func (f TaxonomyFilter) IsEmpty() bool {
	return len(f.Clauses) == 0
}

// And returns the conjunction of f and other. Clauses are not merged, so a
// clause from other can only narrow f.
func (f TaxonomyFilter) And(other TaxonomyFilter) TaxonomyFilter {
	if other.IsEmpty() {
		return f
	}
	if f.IsEmpty() {
		return other
	}
	out := TaxonomyFilter{Clauses: make([]TaxonomyClause, 0, len(f.Clauses)+len(other.Clauses))}
	seen := make(map[string]bool)
	for _, c := range append(append([]TaxonomyClause{}, f.Clauses...), other.Clauses...) {
		key := c.canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Clauses = append(out.Clauses, c)
	}
	out.sortClauses()
	return out
}

// Canonical is a deterministic serialisation used for cache keys.
func (f TaxonomyFilter) Canonical() string {
	parts := make([]string, len(f.Clauses))
	for i, c := range f.Clauses {
		parts[i] = c.canonical()
	}
	return strings.Join(parts, ";")
}

// Compact renders the filter in the form accepted by ParseTaxonomyFilter.
func (f TaxonomyFilter) Compact() string {
	parts := make([]string, len(f.Clauses))
	for i, c := range f.Clauses {
		name := c.Taxonomy
		if c.Field != TaxonomyFieldSlug {
			name += "." + c.Field
		}
		parts[i] = name + ":" + strings.Join(c.Terms, ",")
	}
	return strings.Join(parts, ";")
}

func (c TaxonomyClause) canonical() string {
	return c.Taxonomy + "." + c.Field + "=" + strings.Join(c.Terms, ",")
}

func (f *TaxonomyFilter) sortClauses() {
	sort.SliceStable(f.Clauses, func(i, j int) bool {
		return f.Clauses[i].canonical() < f.Clauses[j].canonical()
	})
}

// DirectoryAttributes carries the declared defaults of one directory embedding
// plus the routing variables of the calling context.
type DirectoryAttributes struct {
	// Letters is the allowed letter set; it may contain LetterAll
	Letters []Letter

	// Letter is the declared default letter (optional)
	Letter string

	// Search is the declared default search term (optional)
	Search string

	// Taxonomy is a declared default filter in compact form
	Taxonomy string

	// TaxonomyTerms is a declared default filter in structured form
	TaxonomyTerms map[string][]string

	// LockedTaxonomy is always AND-ed into the resolved filter (compact form)
	LockedTaxonomy string

	Page    int
	PerPage int

	// RouteVars holds named routing variables (e.g. "letter", "paged")
	RouteVars map[string]string

	// BasePath is the path the directory is served from, used for links
	BasePath string
}

// DefaultLetter is the letter used when a request names none: All when
// the allowed set includes it, then A, then the first allowed letter.
func (a DirectoryAttributes) DefaultLetter() Letter {
	if ContainsLetter(a.Letters, LetterAll) {
		return LetterAll
	}
	if len(a.Letters) == 0 || ContainsLetter(a.Letters, "A") {
		return "A"
	}
	return a.Letters[0]
}
