package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ContentType identifies a kind of content served as a directory
type ContentType string

const (
	ContentTypeArtist       ContentType = "artist"
	ContentTypeOrganization ContentType = "organization"
)

// StatusPublished is the content status listed in directories
const StatusPublished = "publish"

// IndexedItem is the immutable, cacheable listing projection of one content entity.
type IndexedItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Letter     Letter   `json:"letter"`
	SortKey    string   `json:"sort_key"`
	SearchText string   `json:"search_text"`
	Badges     []string `json:"badges,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	Permalink  string   `json:"permalink"`
	Excerpt    string   `json:"excerpt,omitempty"`
}

// NewIndexedItem builds an item whose derived fields (letter, sort key,
// search text) are computed from the display fields.
func NewIndexedItem(id, name, permalink, thumbnail, excerpt string, badges []string) IndexedItem {
	name = strings.TrimSpace(name)
	parts := make([]string, 0, len(badges)+2)
	parts = append(parts, name)
	parts = append(parts, badges...)
	if excerpt != "" {
		parts = append(parts, excerpt)
	}

	return IndexedItem{
		ID:         id,
		Name:       name,
		Letter:     ClassifyName(name),
		SortKey:    strings.ToLower(name),
		SearchText: strings.ToLower(strings.Join(parts, " ")),
		Badges:     badges,
		Thumbnail:  thumbnail,
		Permalink:  permalink,
		Excerpt:    excerpt,
	}
}

// Term is a taxonomy term assigned to a content item
type Term struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ContentQuery scopes an id lookup against the content store
type ContentQuery struct {
	Type     ContentType
	Status   string
	Taxonomy TaxonomyFilter
	Search   string
	OrderBy  string // "title" or "id"
	Order    string // "ASC" or "DESC"
}

// ContentEventKind identifies a mutation reported by the content store
type ContentEventKind string

const (
	EventSave             ContentEventKind = "save"
	EventStatusChange     ContentEventKind = "status_change"
	EventTermsChanged     ContentEventKind = "terms_changed"
	EventAttributeChanged ContentEventKind = "attribute_changed"
	EventDelete           ContentEventKind = "delete"
)

// ContentEvent is a mutation notification from the content store
type ContentEvent struct {
	Kind        ContentEventKind `json:"event"`
	ContentType ContentType      `json:"content_type"`
	ItemID      string           `json:"id"`
	OldStatus   string           `json:"old_status,omitempty"`
	NewStatus   string           `json:"new_status,omitempty"`
	Taxonomy    string           `json:"taxonomy,omitempty"`
	Key         string           `json:"key,omitempty"`
}

// CacheEntry is the stored envelope around a cached payload.
// Entries are write-once per key; a version bump makes them unreachable.
type CacheEntry struct {
	Key      string          `json:"key"`
	Version  int64           `json:"version"`
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
}
