package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

func TestVersionStore_UnseenType(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewVersionStore(client)

	v, found, err := store.Get(context.Background(), domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, v)
}

func TestVersionStore_FirstIncrementYieldsTwo(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewVersionStore(client)
	ctx := context.Background()

	v, err := store.Increment(ctx, domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, found, err := store.Get(ctx, domain.ContentTypeArtist)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), v)
}

func TestVersionStore_ConcurrentIncrements(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewVersionStore(client)
	ctx := context.Background()

	const k = 40
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment(ctx, domain.ContentTypeOrganization)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	versions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.ContentType]int64{domain.ContentTypeOrganization: 1 + k}, versions)
}
