package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// DefaultPageTTL is how long a computed page stays cached
const DefaultPageTTL = time.Hour

// Paginator applies the letter bucket to an index and slices one page out of
// it. Search and taxonomy scoping already happened in the indexer.
type Paginator struct {
	cache  *listingCache
	ttl    time.Duration
	logger *slog.Logger
}

// PaginatorConfig holds configuration for the paginator.
type PaginatorConfig struct {
	Cache  driven.CacheStore // Optional: nil disables caching
	TTL    time.Duration     // Page TTL (default: 1h)
	Logger *slog.Logger
}

// NewPaginator creates a new paginator.
func NewPaginator(cfg PaginatorConfig) *Paginator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &Paginator{
		cache:  newListingCache(cfg.Cache, logger),
		ttl:    ttl,
		logger: logger,
	}
}

// pagePayload is the cached form of a page; items are stored by id and
// mapped back onto the index of the same version.
type pagePayload struct {
	IDs          []string              `json:"ids"`
	Total        int                   `json:"total"`
	TotalPages   int                   `json:"total_pages"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"per_page"`
	LetterCounts map[domain.Letter]int `json:"letter_counts"`
}

// GetPage returns the requested page of the letter bucket. Out-of-range
// pages are clamped to the nearest valid page.
func (p *Paginator) GetPage(ctx context.Context, snap Snapshot, index []domain.IndexedItem, state domain.QueryState) (*domain.Page, error) {
	if state.PerPage < 1 {
		state.PerPage = domain.DefaultPerPage
	}

	key := PageCacheKey(snap.ContentType, snap.Version, state)
	var cached pagePayload
	if p.cache.load(ctx, snap, key, &cached) {
		if page, ok := cached.resolve(index); ok {
			return page, nil
		}
		p.logger.Debug("cached page references unknown items, recomputing", "key", key)
	}

	page := paginate(index, state)
	p.cache.save(ctx, snap, key, newPagePayload(page), p.ttl)
	return page, nil
}

func newPagePayload(page *domain.Page) pagePayload {
	ids := make([]string, len(page.Items))
	for i, item := range page.Items {
		ids[i] = item.ID
	}
	return pagePayload{
		IDs:          ids,
		Total:        page.Total,
		TotalPages:   page.TotalPages,
		Page:         page.Page,
		PerPage:      page.PerPage,
		LetterCounts: page.LetterCounts,
	}
}

func (pp pagePayload) resolve(index []domain.IndexedItem) (*domain.Page, bool) {
	byID := make(map[string]int, len(index))
	for i, item := range index {
		byID[item.ID] = i
	}
	items := make([]domain.IndexedItem, 0, len(pp.IDs))
	for _, id := range pp.IDs {
		pos, ok := byID[id]
		if !ok {
			return nil, false
		}
		items = append(items, index[pos])
	}
	return &domain.Page{
		Items:        items,
		Total:        pp.Total,
		TotalPages:   pp.TotalPages,
		Page:         pp.Page,
		PerPage:      pp.PerPage,
		LetterCounts: pp.LetterCounts,
	}, true
}

// letterBuckets maps each bucket to the positions of its items in index.
func letterBuckets(index []domain.IndexedItem) map[domain.Letter]*roaring.Bitmap {
	buckets := make(map[domain.Letter]*roaring.Bitmap)
	for i, item := range index {
		bm, ok := buckets[item.Letter]
		if !ok {
			bm = roaring.New()
			buckets[item.Letter] = bm
		}
		bm.Add(uint32(i))
	}
	return buckets
}

func paginate(index []domain.IndexedItem, state domain.QueryState) *domain.Page {
	buckets := letterBuckets(index)

	counts := make(map[domain.Letter]int, len(buckets))
	for letter, bm := range buckets {
		counts[letter] = int(bm.GetCardinality())
	}

	var positions []uint32
	if state.Letter == domain.LetterAll {
		positions = make([]uint32, len(index))
		for i := range positions {
			positions[i] = uint32(i)
		}
	} else if bm, ok := buckets[state.Letter]; ok {
		positions = bm.ToArray()
	}

	total := len(positions)
	totalPages := (total + state.PerPage - 1) / state.PerPage
	if totalPages < 1 {
		totalPages = 1
	}

	page := state.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * state.PerPage
	end := start + state.PerPage
	if end > total {
		end = total
	}

	items := make([]domain.IndexedItem, 0, end-start)
	for _, pos := range positions[start:end] {
		items = append(items, index[pos])
	}

	return &domain.Page{
		Items:        items,
		Total:        total,
		TotalPages:   totalPages,
		Page:         page,
		PerPage:      state.PerPage,
		LetterCounts: counts,
	}
}
