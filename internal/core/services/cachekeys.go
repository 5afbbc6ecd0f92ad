package services

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// CacheKeyPrefix is shared by every directory cache entry
const CacheKeyPrefix = "sercha:dir:"

// TypeKeyPrefix returns the key prefix of every entry of one content type,
// across all versions.
func TypeKeyPrefix(contentType domain.ContentType) string {
	return CacheKeyPrefix + string(contentType) + ":"
}

// versionKeyPrefix scopes keys to one content type and version
func versionKeyPrefix(contentType domain.ContentType, version int64) string {
	return fmt.Sprintf("%sv%d:", TypeKeyPrefix(contentType), version)
}

// IndexCacheKey identifies the full index of one search/taxonomy scope.
func IndexCacheKey(contentType domain.ContentType, version int64, filter domain.TaxonomyFilter, search string) string {
	scope := filter.Canonical() + "|" + strings.ToLower(search)
	return fmt.Sprintf("%sindex:%016x", versionKeyPrefix(contentType, version), xxhash.Sum64String(scope))
}

// PageCacheKey identifies one page of one letter bucket.
func PageCacheKey(contentType domain.ContentType, version int64, state domain.QueryState) string {
	scope := strings.Join([]string{
		string(state.Letter),
		strings.ToLower(state.Search),
		state.Taxonomy.Canonical(),
	}, "|")
	return fmt.Sprintf("%spage:%016x:p%d:n%d",
		versionKeyPrefix(contentType, version), xxhash.Sum64String(scope), state.Page, state.PerPage)
}
