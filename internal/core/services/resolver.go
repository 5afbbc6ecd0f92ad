package services

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// QueryResolver turns declared attributes plus live request parameters into
// a validated QueryState. It never fails: malformed input falls through to
// the next source and finally to a hard default.
//
// Precedence for every field, highest first: transport parameters, routing
// variables, declared attributes, hard default.
type QueryResolver struct{}

// NewQueryResolver creates a new QueryResolver
func NewQueryResolver() *QueryResolver {
	return &QueryResolver{}
}

// Resolve builds the QueryState for one request.
func (r *QueryResolver) Resolve(attrs domain.DirectoryAttributes, params url.Values) domain.QueryState {
	return domain.QueryState{
		Letter:   r.resolveLetter(attrs, params),
		Search:   r.resolveSearch(attrs, params),
		Taxonomy: r.resolveTaxonomy(attrs, params),
		Page:     r.resolvePage(attrs, params),
		PerPage:  r.resolvePerPage(attrs, params),
	}
}

func (r *QueryResolver) resolveLetter(attrs domain.DirectoryAttributes, params url.Values) domain.Letter {
	fallback := attrs.DefaultLetter()

	for _, raw := range []string{
		params.Get(domain.ParamLetter),
		attrs.RouteVars[domain.ParamLetter],
		attrs.Letter,
	} {
		letter, ok := normalizeLetter(raw)
		if !ok {
			continue
		}
		if len(attrs.Letters) > 0 && !domain.ContainsLetter(attrs.Letters, letter) {
			return fallback
		}
		return letter
	}
	return fallback
}

// normalizeLetter decodes and trims raw letter input. "All" in any case is
// the sentinel, "#" passes through, anything else is classified by its
// first character.
func normalizeLetter(raw string) (domain.Letter, bool) {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", false
	case strings.EqualFold(raw, string(domain.LetterAll)):
		return domain.LetterAll, true
	case raw == string(domain.LetterOther):
		return domain.LetterOther, true
	}
	return domain.ClassifyToken(raw), true
}

func (r *QueryResolver) resolveSearch(attrs domain.DirectoryAttributes, params url.Values) string {
	for _, raw := range []string{
		params.Get(domain.ParamSearch),
		params.Get(domain.ParamSearchAlias),
		attrs.RouteVars[domain.ParamSearch],
		attrs.Search,
	} {
		if search := sanitizeSearch(raw); search != "" {
			return search
		}
	}
	return ""
}

// sanitizeSearch collapses whitespace and caps the term length in runes.
func sanitizeSearch(raw string) string {
	search := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(search) <= domain.MaxSearchLength {
		return search
	}
	runes := []rune(search)
	return strings.TrimSpace(string(runes[:domain.MaxSearchLength]))
}

func (r *QueryResolver) resolveTaxonomy(attrs domain.DirectoryAttributes, params url.Values) domain.TaxonomyFilter {
	filter := r.requestedTaxonomy(attrs, params)
	if attrs.LockedTaxonomy != "" {
		filter = filter.And(domain.ParseTaxonomyFilter(attrs.LockedTaxonomy))
	}
	return filter
}

func (r *QueryResolver) requestedTaxonomy(attrs domain.DirectoryAttributes, params url.Values) domain.TaxonomyFilter {
	// Repeated tax parameters are clauses of one filter
	if values := params[domain.ParamTaxonomy]; len(values) > 0 {
		if f := domain.ParseTaxonomyFilter(strings.Join(values, ";")); !f.IsEmpty() {
			return f
		}
	}
	if f := domain.ParseTaxonomyFilter(attrs.RouteVars[domain.ParamTaxonomy]); !f.IsEmpty() {
		return f
	}
	if f := domain.ParseTaxonomyFilter(attrs.Taxonomy); !f.IsEmpty() {
		return f
	}
	return domain.TaxonomyFilterFromMap(attrs.TaxonomyTerms)
}

func (r *QueryResolver) resolvePage(attrs domain.DirectoryAttributes, params url.Values) int {
	for _, raw := range []string{
		params.Get(domain.ParamPaged),
		params.Get(domain.ParamPage),
		attrs.RouteVars[domain.ParamPaged],
		attrs.RouteVars[domain.ParamPage],
	} {
		if n, ok := parsePositive(raw); ok {
			return n
		}
	}
	if attrs.Page > 0 {
		return attrs.Page
	}
	return 1
}

func (r *QueryResolver) resolvePerPage(attrs domain.DirectoryAttributes, params url.Values) int {
	perPage := domain.DefaultPerPage
	if n, ok := parsePositive(params.Get(domain.ParamPerPage)); ok {
		perPage = n
	} else if attrs.PerPage > 0 {
		perPage = attrs.PerPage
	}
	if perPage > domain.MaxPerPage {
		perPage = domain.MaxPerPage
	}
	return perPage
}

// parsePositive treats non-numeric, zero and negative values as absent.
func parsePositive(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
