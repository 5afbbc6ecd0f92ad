package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// DefaultIndexTTL is how long a built index stays cached
const DefaultIndexTTL = time.Hour

// DefaultBuildTimeout bounds one shared index build
const DefaultBuildTimeout = 30 * time.Second

// ContentIndexer builds and caches the full, sorted index of one
// search/taxonomy scope of a content type.
type ContentIndexer struct {
	content  driven.ContentStore
	cache    *listingCache
	versions *VersionRegistry
	profiles map[domain.ContentType]domain.DirectoryProfile
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	// Collapses concurrent misses on one key within this process
	group singleflight.Group
}

// IndexerConfig holds configuration for the content indexer.
type IndexerConfig struct {
	Content  driven.ContentStore
	Cache    driven.CacheStore // Optional: nil disables caching
	Versions *VersionRegistry
	Profiles map[domain.ContentType]domain.DirectoryProfile
	TTL      time.Duration // Index TTL (default: 1h)
	Logger   *slog.Logger

	// BuildTimeout bounds a build shared by concurrent misses (default: 30s)
	BuildTimeout time.Duration
}

// NewContentIndexer creates a new content indexer.
func NewContentIndexer(cfg IndexerConfig) *ContentIndexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}

	timeout := cfg.BuildTimeout
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}

	profiles := cfg.Profiles
	if profiles == nil {
		profiles = domain.DefaultProfiles()
	}

	return &ContentIndexer{
		content:  cfg.Content,
		cache:    newListingCache(cfg.Cache, logger),
		versions: cfg.Versions,
		profiles: profiles,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger,
	}
}

// GetIndex returns the index of a scope at the current cache version.
func (ix *ContentIndexer) GetIndex(ctx context.Context, contentType domain.ContentType, filter domain.TaxonomyFilter, search string) ([]domain.IndexedItem, error) {
	return ix.IndexAt(ctx, ix.versions.Snapshot(ctx, contentType), filter, search)
}

// IndexAt returns the index of a scope at a pinned version snapshot.
// Content-store errors are returned unchanged and nothing is cached.
//
// A search index is the taxonomy-scoped index narrowed to items whose
// search text contains the term, so names, badges and excerpts all match
// whatever attribute the profile reads them from.
func (ix *ContentIndexer) IndexAt(ctx context.Context, snap Snapshot, filter domain.TaxonomyFilter, search string) ([]domain.IndexedItem, error) {
	profile, ok := ix.profiles[snap.ContentType]
	if !ok {
		return nil, domain.ErrUnknownContentType
	}

	key := IndexCacheKey(snap.ContentType, snap.Version, filter, search)
	var cached []domain.IndexedItem
	if ix.cache.load(ctx, snap, key, &cached) {
		return cached, nil
	}

	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		scope, err := ix.IndexAt(ctx, snap, filter, "")
		if err != nil {
			return nil, err
		}
		items := matchSearch(scope, term)
		ix.cache.save(ctx, snap, key, items, ix.ttl)
		return items, nil
	}

	flightKey := key
	if !snap.Cacheable {
		flightKey = "uncached:" + key
	}

	// The shared build must outlive any one caller: each caller waits on
	// its own context instead.
	ch := ix.group.DoChan(flightKey, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ix.timeout)
		defer cancel()

		items, err := ix.build(buildCtx, profile, filter)
		if err != nil {
			return nil, err
		}
		ix.cache.save(buildCtx, snap, key, items, ix.ttl)
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.IndexedItem), nil
	}
}

// matchSearch keeps the items whose search text contains term, in order
func matchSearch(items []domain.IndexedItem, term string) []domain.IndexedItem {
	matched := make([]domain.IndexedItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(item.SearchText, term) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (ix *ContentIndexer) build(ctx context.Context, profile domain.DirectoryProfile, filter domain.TaxonomyFilter) ([]domain.IndexedItem, error) {
	start := time.Now()

	ids, err := ix.content.QueryIDs(ctx, domain.ContentQuery{
		Type:     profile.ContentType,
		Status:   domain.StatusPublished,
		Taxonomy: filter,
		OrderBy:  "title",
		Order:    "ASC",
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.IndexedItem, 0, len(ids))
	for _, id := range ids {
		item, err := ix.buildItem(ctx, profile, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortKey != items[j].SortKey {
			return items[i].SortKey < items[j].SortKey
		}
		return items[i].ID < items[j].ID
	})

	ix.logger.Debug("directory index built",
		"content_type", profile.ContentType,
		"items", len(items),
		"duration", time.Since(start))
	return items, nil
}

func (ix *ContentIndexer) buildItem(ctx context.Context, profile domain.DirectoryProfile, id string) (domain.IndexedItem, error) {
	attr := func(key string) (string, error) {
		if key == "" {
			return "", nil
		}
		v, err := ix.content.GetAttribute(ctx, id, key)
		return strings.TrimSpace(v), err
	}

	name, err := attr(profile.NameKey)
	if err != nil {
		return domain.IndexedItem{}, err
	}
	permalink, err := attr(profile.PermalinkKey)
	if err != nil {
		return domain.IndexedItem{}, err
	}
	thumbnail, err := attr(profile.ThumbnailKey)
	if err != nil {
		return domain.IndexedItem{}, err
	}
	excerpt, err := attr(profile.ExcerptKey)
	if err != nil {
		return domain.IndexedItem{}, err
	}

	var badges []string

	var location []string
	for _, key := range profile.LocationKeys {
		v, err := attr(key)
		if err != nil {
			return domain.IndexedItem{}, err
		}
		if v != "" {
			location = append(location, v)
		}
	}
	if len(location) > 0 {
		badges = append(badges, strings.Join(location, ", "))
	}

	for _, taxonomy := range profile.BadgeTaxonomies {
		terms, err := ix.content.GetTaxonomyTerms(ctx, id, taxonomy)
		if err != nil {
			return domain.IndexedItem{}, err
		}
		for _, term := range terms {
			if label := strings.TrimSpace(term.Name); label != "" {
				badges = append(badges, label)
			}
		}
	}

	return domain.NewIndexedItem(id, name, permalink, thumbnail, plainExcerpt(excerpt), badges), nil
}
