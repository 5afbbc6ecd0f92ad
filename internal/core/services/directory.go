package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"sort"
	"strconv"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
)

//go:embed templates/*.html
var templateFS embed.FS

var directoryTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// paginationWindow is the number of pages shown on each side of the current one
const paginationWindow = 2

// Ensure directoryService implements DirectoryService
var _ driving.DirectoryService = (*directoryService)(nil)

// directoryService composes directory listings. It holds no per-request
// state; everything a render produces is returned in its result.
type directoryService struct {
	profiles  map[domain.ContentType]domain.DirectoryProfile
	resolver  *QueryResolver
	versions  *VersionRegistry
	indexer   *ContentIndexer
	paginator *Paginator
	renderer  driven.CardRenderer
	logger    *slog.Logger
}

// DirectoryConfig holds the collaborators of the directory service.
type DirectoryConfig struct {
	Profiles  map[domain.ContentType]domain.DirectoryProfile
	Resolver  *QueryResolver
	Versions  *VersionRegistry
	Indexer   *ContentIndexer
	Paginator *Paginator
	Renderer  driven.CardRenderer
	Logger    *slog.Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(cfg DirectoryConfig) driving.DirectoryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = domain.DefaultProfiles()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewQueryResolver()
	}
	return &directoryService{
		profiles:  profiles,
		resolver:  resolver,
		versions:  cfg.Versions,
		indexer:   cfg.Indexer,
		paginator: cfg.Paginator,
		renderer:  cfg.Renderer,
		logger:    logger,
	}
}

// Profile returns the directory profile for a content type
func (s *directoryService) Profile(contentType domain.ContentType) (domain.DirectoryProfile, error) {
	profile, ok := s.profiles[contentType]
	if !ok {
		return domain.DirectoryProfile{}, domain.ErrUnknownContentType
	}
	return profile, nil
}

// Profiles lists every configured profile ordered by content type
func (s *directoryService) Profiles() []domain.DirectoryProfile {
	out := make([]domain.DirectoryProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContentType < out[j].ContentType })
	return out
}

// directoryView is the template data of one render
type directoryView struct {
	ContentType domain.ContentType
	Label       string
	Unavailable bool
	Letters     []domain.NavLink
	Summary     string
	Cards       []template.HTML
	Pages       []domain.NavLink
}

// Render resolves the request, fetches the index and page at one pinned
// version and assembles the listing.
func (s *directoryService) Render(ctx context.Context, contentType domain.ContentType, attrs domain.DirectoryAttributes, params url.Values) (*domain.RenderResult, error) {
	profile, ok := s.profiles[contentType]
	if !ok {
		return nil, domain.ErrUnknownContentType
	}
	attrs = withProfileDefaults(attrs, profile)

	// Links carry only the requested filter; locked scopes are re-applied
	// on every request and must not leak into URLs.
	lock := domain.ParseTaxonomyFilter(profile.LockedTaxonomy).And(domain.ParseTaxonomyFilter(attrs.LockedTaxonomy))
	attrs.LockedTaxonomy = ""
	state := s.resolver.Resolve(attrs, params)
	links := linkBuilder{basePath: attrs.BasePath, defaultLetter: attrs.DefaultLetter(), search: state.Search, tax: state.Taxonomy}
	scoped := state
	scoped.Taxonomy = state.Taxonomy.And(lock)

	view := directoryView{ContentType: contentType, Label: profile.Label}
	result := &domain.RenderResult{ContentType: contentType, State: state}

	snap := s.versions.Snapshot(ctx, contentType)
	index, err := s.indexer.IndexAt(ctx, snap, scoped.Taxonomy, scoped.Search)
	if err != nil {
		return s.unavailable(ctx, result, view, links, state, err)
	}
	page, err := s.paginator.GetPage(ctx, snap, index, scoped)
	if err != nil {
		return s.unavailable(ctx, result, view, links, state, err)
	}

	state.Page = page.Page
	result.State = state
	result.Total = page.Total
	result.TotalPages = page.TotalPages
	result.CanonicalURL = links.url(state.Letter, state.Page)
	result.Status = domain.RenderStatusOK
	if page.Total == 0 {
		result.Status = domain.RenderStatusEmpty
	}

	view.Letters = letterNav(attrs.Letters, state.Letter, page.LetterCounts, links)
	view.Summary = summary(page, profile.Label)
	view.Cards = s.renderCards(ctx, contentType, page.Items)
	if page.TotalPages > 1 {
		view.Pages = pageNav(state.Letter, page.Page, page.TotalPages, links)
	}

	html, err := execute(view)
	if err != nil {
		return nil, err
	}
	result.HTML = html
	return result, nil
}

func (s *directoryService) unavailable(ctx context.Context, result *domain.RenderResult, view directoryView, links linkBuilder, state domain.QueryState, cause error) (*domain.RenderResult, error) {
	s.logger.ErrorContext(ctx, "directory unavailable",
		"content_type", result.ContentType, "error", cause)

	view.Unavailable = true
	html, err := execute(view)
	if err != nil {
		return nil, err
	}
	result.HTML = html
	result.CanonicalURL = links.url(state.Letter, state.Page)
	result.Status = domain.RenderStatusUnavailable
	return result, nil
}

func (s *directoryService) renderCards(ctx context.Context, contentType domain.ContentType, items []domain.IndexedItem) []template.HTML {
	cards := make([]template.HTML, 0, len(items))
	for _, item := range items {
		card, err := s.renderer.RenderCard(ctx, contentType, item)
		if err != nil {
			s.logger.WarnContext(ctx, "card render failed, skipping",
				"content_type", contentType, "id", item.ID, "error", err)
			continue
		}
		// Card fragments come from our own templates
		cards = append(cards, template.HTML(card))
	}
	return cards
}

func execute(view directoryView) (string, error) {
	var buf bytes.Buffer
	if err := directoryTemplate.ExecuteTemplate(&buf, "directory", view); err != nil {
		return "", fmt.Errorf("render directory: %w", err)
	}
	return buf.String(), nil
}

// withProfileDefaults fills unset declared attributes from the profile.
func withProfileDefaults(attrs domain.DirectoryAttributes, profile domain.DirectoryProfile) domain.DirectoryAttributes {
	defaults := profile.Attributes()
	if len(attrs.Letters) == 0 {
		attrs.Letters = defaults.Letters
	}
	if attrs.PerPage <= 0 {
		attrs.PerPage = defaults.PerPage
	}
	if attrs.BasePath == "" {
		attrs.BasePath = defaults.BasePath
	}
	return attrs
}

func summary(page *domain.Page, label string) string {
	if page.Total == 0 {
		return fmt.Sprintf("No %s found.", label)
	}
	first := (page.Page-1)*page.PerPage + 1
	last := first + len(page.Items) - 1
	return fmt.Sprintf("Showing %d–%d of %d %s", first, last, page.Total, label)
}

// linkBuilder produces directory URLs that preserve search and taxonomy.
type linkBuilder struct {
	basePath      string
	defaultLetter domain.Letter
	search        string
	tax           domain.TaxonomyFilter
}

func (b linkBuilder) url(letter domain.Letter, page int) string {
	q := url.Values{}
	if letter != "" && letter != b.defaultLetter {
		q.Set(domain.ParamLetter, string(letter))
	}
	if b.search != "" {
		q.Set(domain.ParamSearch, b.search)
	}
	if !b.tax.IsEmpty() {
		q.Set(domain.ParamTaxonomy, b.tax.Compact())
	}
	if page > 1 {
		q.Set(domain.ParamPaged, strconv.Itoa(page))
	}
	if len(q) == 0 {
		return b.basePath
	}
	return b.basePath + "?" + q.Encode()
}

// letterNav links every allowed letter that has items, plus All when allowed
// and the active letter. Links reset the page.
func letterNav(allowed []domain.Letter, active domain.Letter, counts map[domain.Letter]int, links linkBuilder) []domain.NavLink {
	var nav []domain.NavLink
	if domain.ContainsLetter(allowed, domain.LetterAll) {
		total := 0
		for _, n := range counts {
			total += n
		}
		nav = append(nav, domain.NavLink{
			Label:  string(domain.LetterAll),
			URL:    links.url(domain.LetterAll, 1),
			Active: active == domain.LetterAll,
			Count:  total,
		})
	}
	for _, letter := range domain.Alphabet() {
		if !domain.ContainsLetter(allowed, letter) {
			continue
		}
		if counts[letter] == 0 && letter != active {
			continue
		}
		nav = append(nav, domain.NavLink{
			Label:  string(letter),
			URL:    links.url(letter, 1),
			Active: letter == active,
			Count:  counts[letter],
		})
	}
	return nav
}

// pageNav builds prev/next, first/last and a window around the current page.
func pageNav(letter domain.Letter, current, totalPages int, links linkBuilder) []domain.NavLink {
	var nav []domain.NavLink
	if current > 1 {
		nav = append(nav, domain.NavLink{Label: "« Previous", URL: links.url(letter, current-1), Rel: "prev"})
	}

	last := 0
	for p := 1; p <= totalPages; p++ {
		inWindow := p >= current-paginationWindow && p <= current+paginationWindow
		if p != 1 && p != totalPages && !inWindow {
			continue
		}
		if last != 0 && p > last+1 {
			nav = append(nav, domain.NavLink{Gap: true})
		}
		nav = append(nav, domain.NavLink{
			Label:  strconv.Itoa(p),
			URL:    links.url(letter, p),
			Active: p == current,
		})
		last = p
	}

	if current < totalPages {
		nav = append(nav, domain.NavLink{Label: "Next »", URL: links.url(letter, current+1), Rel: "next"})
	}
	return nav
}
