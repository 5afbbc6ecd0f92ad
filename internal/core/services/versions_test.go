package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven/mocks"
)

func TestVersionRegistry_DefaultsToOne(t *testing.T) {
	r := NewVersionRegistry(mocks.NewMockVersionStore(), nil)

	v, err := r.CurrentVersion(context.Background(), domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestVersionRegistry_BumpIncrementsByOne(t *testing.T) {
	ctx := context.Background()
	r := NewVersionRegistry(mocks.NewMockVersionStore(), nil)

	v, err := r.Bump(ctx, domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	current, err := r.CurrentVersion(ctx, domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)

	other, err := r.CurrentVersion(ctx, domain.ContentTypeOrganization)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "types are independent")
}

func TestVersionRegistry_ConcurrentBumpsAreNotLost(t *testing.T) {
	ctx := context.Background()
	r := NewVersionRegistry(mocks.NewMockVersionStore(), nil)

	const k = 50
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Bump(ctx, domain.ContentTypeArtist)
		}()
		go func() {
			defer wg.Done()
			_, _ = r.CurrentVersion(ctx, domain.ContentTypeArtist)
		}()
	}
	wg.Wait()

	v, err := r.CurrentVersion(ctx, domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.Equal(t, int64(1+k), v)
}

func TestVersionRegistry_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockVersionStore()
	r := NewVersionRegistry(store, nil)

	snap := r.Snapshot(ctx, domain.ContentTypeArtist)
	assert.True(t, snap.Cacheable)
	assert.Equal(t, int64(1), snap.Version)

	store.GetErr = errors.New("redis down")
	snap = r.Snapshot(ctx, domain.ContentTypeArtist)
	assert.False(t, snap.Cacheable)
	assert.Equal(t, domain.ContentTypeArtist, snap.ContentType)

	_, err := r.CurrentVersion(ctx, domain.ContentTypeArtist)
	assert.Error(t, err)
}

func TestVersionRegistry_BumpError(t *testing.T) {
	store := mocks.NewMockVersionStore()
	store.IncrementErr = errors.New("write failed")
	r := NewVersionRegistry(store, nil)

	_, err := r.Bump(context.Background(), domain.ContentTypeArtist)
	assert.EqualError(t, err, "write failed")
}
