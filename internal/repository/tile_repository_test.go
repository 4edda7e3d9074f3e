package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	tileDomain "github.com/amble-mobility/offline-engine/internal/domain/tile"
	"github.com/amble-mobility/offline-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileRepository_OverwriteWholesale(t *testing.T) {
	_, db := newTestStore(t)
	repo := repository.NewGormTileRepository(db)
	ctx := context.Background()

	key := tileDomain.Key{Zoom: 14, X: 12894, Y: 8283}

	first, err := tileDomain.NewCachedTile(key, []byte("old payload"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	refetched, err := tileDomain.NewCachedTile(key, []byte("fresh payload"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, refetched))

	got, err := repo.FindByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh payload"), got.Payload())
}

func TestTileRepository_FindByKey_NotFound(t *testing.T) {
	_, db := newTestStore(t)
	repo := repository.NewGormTileRepository(db)

	_, err := repo.FindByKey(context.Background(), tileDomain.Key{Zoom: 1, X: 2, Y: 3})
	assert.True(t, shared.IsNotFound(err))
}

func TestTileRepository_DeleteOlderThan(t *testing.T) {
	_, db := newTestStore(t)
	repo := repository.NewGormTileRepository(db)
	ctx := context.Background()

	cutoff := time.Now().UTC()
	stale := tileDomain.Reconstruct(tileDomain.Key{Zoom: 10, X: 1, Y: 1}, []byte("stale"), cutoff.Add(-time.Hour))
	fresh := tileDomain.Reconstruct(tileDomain.Key{Zoom: 10, X: 2, Y: 2}, []byte("fresh"), cutoff.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, stale))
	require.NoError(t, repo.Save(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByKey(ctx, fresh.Key())
	assert.NoError(t, err)
}
