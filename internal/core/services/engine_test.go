package services

import (
	"strconv"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven/mocks"
)

// testEngine wires the directory services over in-memory doubles
type testEngine struct {
	content   *mocks.MockContentStore
	cache     *mocks.MockCacheStore
	store     *mocks.MockVersionStore
	renderer  *mocks.MockCardRenderer
	versions  *VersionRegistry
	indexer   *ContentIndexer
	paginator *Paginator
	directory *directoryService
	events    *invalidationService
}

func newTestEngine() *testEngine {
	e := &testEngine{
		content:  mocks.NewMockContentStore(),
		cache:    mocks.NewMockCacheStore(),
		store:    mocks.NewMockVersionStore(),
		renderer: mocks.NewMockCardRenderer(),
	}
	profiles := domain.DefaultProfiles()
	e.versions = NewVersionRegistry(e.store, nil)
	e.indexer = NewContentIndexer(IndexerConfig{
		Content:  e.content,
		Cache:    e.cache,
		Versions: e.versions,
		Profiles: profiles,
	})
	e.paginator = NewPaginator(PaginatorConfig{Cache: e.cache})
	e.directory = NewDirectoryService(DirectoryConfig{
		Profiles:  profiles,
		Versions:  e.versions,
		Indexer:   e.indexer,
		Paginator: e.paginator,
		Renderer:  e.renderer,
	}).(*directoryService)
	e.events = NewInvalidationService(e.versions, profiles, nil).(*invalidationService)
	return e
}

// seed adds published artists with the given titles; ids are "a1", "a2"...
func (e *testEngine) seed(titles ...string) {
	for i, title := range titles {
		e.content.PutNamed(domain.ContentTypeArtist, artistID(i+1), title)
	}
}

func artistID(n int) string {
	return "a" + strconv.Itoa(n)
}
