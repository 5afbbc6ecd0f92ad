package domain

// DirectoryProfile declares how one content type is indexed and presented.
type DirectoryProfile struct {
	ContentType ContentType `json:"content_type" mapstructure:"content_type"`

	// Label is the plural noun used in summaries ("artists")
	Label string `json:"label" mapstructure:"label"`

	// BasePath is where the directory is served ("/artists/")
	BasePath string `json:"base_path" mapstructure:"base_path"`

	// Letters is the allowed letter set in comma separated form ("All,A,...,#")
	Letters string `json:"letters" mapstructure:"letters"`

	PerPage int `json:"per_page" mapstructure:"per_page"`

	// Attribute keys read from the content store
	NameKey      string   `json:"name_key" mapstructure:"name_key"`
	PermalinkKey string   `json:"permalink_key" mapstructure:"permalink_key"`
	ThumbnailKey string   `json:"thumbnail_key" mapstructure:"thumbnail_key"`
	ExcerptKey   string   `json:"excerpt_key" mapstructure:"excerpt_key"`
	LocationKeys []string `json:"location_keys" mapstructure:"location_keys"`

	// BadgeTaxonomies lists taxonomies whose term names become badges
	BadgeTaxonomies []string `json:"badge_taxonomies" mapstructure:"badge_taxonomies"`

	// LockedTaxonomy scopes every request (compact form, optional)
	LockedTaxonomy string `json:"locked_taxonomy,omitempty" mapstructure:"locked_taxonomy"`
}

// DefaultProfiles returns the built-in artist and organization directories.
func DefaultProfiles() map[ContentType]DirectoryProfile {
	return map[ContentType]DirectoryProfile{
		ContentTypeArtist: {
			ContentType:     ContentTypeArtist,
			Label:           "artists",
			BasePath:        "/artists/",
			Letters:         "All,A,B,C,D,E,F,G,H,I,J,K,L,M,N,O,P,Q,R,S,T,U,V,W,X,Y,Z,#",
			PerPage:         DefaultPerPage,
			NameKey:         "title",
			PermalinkKey:    "permalink",
			ThumbnailKey:    "thumbnail_url",
			ExcerptKey:      "excerpt",
			LocationKeys:    []string{"city", "state"},
			BadgeTaxonomies: []string{"artist_category"},
		},
		ContentTypeOrganization: {
			ContentType:     ContentTypeOrganization,
			Label:           "organizations",
			BasePath:        "/organizations/",
			Letters:         "A,B,C,D,E,F,G,H,I,J,K,L,M,N,O,P,Q,R,S,T,U,V,W,X,Y,Z,#",
			PerPage:         DefaultPerPage,
			NameKey:         "title",
			PermalinkKey:    "permalink",
			ThumbnailKey:    "logo_url",
			ExcerptKey:      "excerpt",
			LocationKeys:    []string{"city", "state", "country"},
			BadgeTaxonomies: []string{"organization_type"},
		},
	}
}

// Attributes returns the declared defaults of the profile.
func (p DirectoryProfile) Attributes() DirectoryAttributes {
	return DirectoryAttributes{
		Letters:        ParseLetterSet(p.Letters),
		PerPage:        p.PerPage,
		LockedTaxonomy: p.LockedTaxonomy,
		BasePath:       p.BasePath,
	}
}

// Page is one window of a letter-filtered index.
type Page struct {
	Items      []IndexedItem `json:"items"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`

	// LetterCounts holds the number of indexed items per bucket
	LetterCounts map[Letter]int `json:"letter_counts"`
}

// RenderStatus describes the outcome of a directory render
type RenderStatus string

const (
	RenderStatusOK          RenderStatus = "ok"
	RenderStatusEmpty       RenderStatus = "empty"
	RenderStatusUnavailable RenderStatus = "unavailable"
)

// RenderResult is the output of one directory render. The canonical URL is
// returned here for the caller to emit once per response.
type RenderResult struct {
	ContentType  ContentType  `json:"content_type"`
	HTML         string       `json:"html"`
	CanonicalURL string       `json:"canonical_url"`
	State        QueryState   `json:"state"`
	Total        int          `json:"total"`
	TotalPages   int          `json:"total_pages"`
	Status       RenderStatus `json:"status"`
}

// NavLink is one navigation link of a rendered directory
type NavLink struct {
	Label  string
	URL    string
	Active bool
	Gap    bool // ellipsis placeholder, no URL
	Rel    string
	Count  int
}

// FlushResult reports an administrative cache flush
type FlushResult struct {
	Deleted  int                   `json:"deleted"`
	Versions map[ContentType]int64 `json:"versions"`
}
