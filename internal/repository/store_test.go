package repository_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/amble-mobility/offline-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestStore opens a store on a throwaway sqlite file.
func newTestStore(t *testing.T) (*repository.Store, *gorm.DB) {
	t.Helper()
	store := repository.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	db, err := store.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, db
}

func TestStoreOpen_Idempotent(t *testing.T) {
	store, db := newTestStore(t)

	again, err := store.Open()
	require.NoError(t, err)
	assert.Same(t, db, again)
}

func TestStoreOpen_ConcurrentCallersConverge(t *testing.T) {
	store := repository.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	t.Cleanup(func() { _ = store.Close() })

	const callers = 8
	handles := make([]*gorm.DB, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := store.Open()
			assert.NoError(t, err)
			handles[i] = db
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, handles[0], handles[i])
	}
}

func TestStoreOpen_UnusableFileIsStoreUnavailable(t *testing.T) {
	// A directory path is not a usable database file.
	store := repository.NewStore(t.TempDir())

	_, err := store.Open()
	var unavailable *shared.StoreUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestStoreUsage_ReportsAndDegrades(t *testing.T) {
	store, _ := newTestStore(t)

	usage := store.Usage(context.Background())
	assert.Greater(t, usage.UsedBytes, int64(0))
	assert.Greater(t, usage.PageSize, int64(0))

	// Unopened store degrades to zero values instead of failing.
	closed := repository.NewStore(filepath.Join(t.TempDir(), "other.db"))
	assert.Equal(t, repository.Usage{}, closed.Usage(context.Background()))
}
