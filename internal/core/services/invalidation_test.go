package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

func currentArtistVersion(t *testing.T, e *testEngine) int64 {
	t.Helper()
	v, err := e.versions.CurrentVersion(context.Background(), domain.ContentTypeArtist)
	require.NoError(t, err)
	return v
}

func TestInvalidationService_HooksBump(t *testing.T) {
	ctx := context.Background()
	ct := domain.ContentTypeArtist

	hooks := map[string]func(e *testEngine) error{
		"save":              func(e *testEngine) error { return e.events.OnSave(ctx, ct, "1") },
		"status change":     func(e *testEngine) error { return e.events.OnStatusChange(ctx, ct, "1", "draft", "publish") },
		"terms changed":     func(e *testEngine) error { return e.events.OnTermsChanged(ctx, ct, "1", "genre") },
		"attribute changed": func(e *testEngine) error { return e.events.OnAttributeChanged(ctx, ct, "1", "unrelated_meta") },
		"delete":            func(e *testEngine) error { return e.events.OnDelete(ctx, ct, "1") },
	}
	for name, hook := range hooks {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine()
			require.NoError(t, hook(e))
			assert.Equal(t, int64(2), currentArtistVersion(t, e))
		})
	}
}

func TestInvalidationService_UnchangedStatusIsIgnored(t *testing.T) {
	e := newTestEngine()

	require.NoError(t, e.events.OnStatusChange(context.Background(), domain.ContentTypeArtist, "1", "publish", "publish"))
	assert.Equal(t, int64(1), currentArtistVersion(t, e))
}

func TestInvalidationService_UnknownTypeIgnored(t *testing.T) {
	e := newTestEngine()

	require.NoError(t, e.events.OnSave(context.Background(), "page", "1"))
	versions, err := e.versions.Versions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestInvalidationService_Handle(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	events := []domain.ContentEvent{
		{Kind: domain.EventSave, ContentType: domain.ContentTypeArtist, ItemID: "1"},
		{Kind: domain.EventStatusChange, ContentType: domain.ContentTypeArtist, ItemID: "1", OldStatus: "publish", NewStatus: "trash"},
		{Kind: domain.EventTermsChanged, ContentType: domain.ContentTypeArtist, ItemID: "1", Taxonomy: "genre"},
		{Kind: domain.EventAttributeChanged, ContentType: domain.ContentTypeArtist, ItemID: "1", Key: "city"},
		{Kind: domain.EventDelete, ContentType: domain.ContentTypeArtist, ItemID: "1"},
	}
	for _, ev := range events {
		require.NoError(t, e.events.Handle(ctx, ev))
	}
	assert.Equal(t, int64(1+len(events)), currentArtistVersion(t, e))

	err := e.events.Handle(ctx, domain.ContentEvent{Kind: "publish_later", ContentType: domain.ContentTypeArtist})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvalidationService_BumpFailure(t *testing.T) {
	e := newTestEngine()
	e.store.IncrementErr = errors.New("store down")

	err := e.events.OnSave(context.Background(), domain.ContentTypeOrganization, "1")
	assert.EqualError(t, err, "store down")
}
