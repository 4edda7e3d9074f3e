package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amble-mobility/offline-engine/internal/application"
	placeDomain "github.com/amble-mobility/offline-engine/internal/domain/place"
	routeDomain "github.com/amble-mobility/offline-engine/internal/domain/route"
	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	tileDomain "github.com/amble-mobility/offline-engine/internal/domain/tile"
	"github.com/amble-mobility/offline-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func coords() []shared.Coordinate {
	return []shared.Coordinate{
		{Latitude: 3.1, Longitude: 101.6},
		{Latitude: 3.2, Longitude: 101.7},
	}
}

type retentionFixture struct {
	routes   *repository.GormRouteRepository
	places   *repository.GormPlaceRepository
	tiles    *repository.GormTileRepository
	sessions *repository.GormSessionRepository
}

func newRetentionFixture(t *testing.T) (*retentionFixture, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return &retentionFixture{
		routes:   repository.NewGormRouteRepository(db),
		places:   repository.NewGormPlaceRepository(db),
		tiles:    repository.NewGormTileRepository(db),
		sessions: repository.NewGormSessionRepository(db),
	}, db
}

func (f *retentionFixture) seedAged(t *testing.T, savedAt time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.routes.Save(ctx,
		routeDomain.Reconstruct(uuid.New(), "aged", coords(), 100, 0.5, savedAt)))
	require.NoError(t, f.places.Save(ctx,
		placeDomain.Reconstruct(uuid.New(), "aged", "", shared.Coordinate{Latitude: 3.1, Longitude: 101.6}, nil, 4, savedAt)))
	// The modulus must not evenly divide the whole-day offsets the tests use,
	// or two seeded tiles get the same key and overwrite each other.
	require.NoError(t, f.tiles.Save(ctx,
		tileDomain.Reconstruct(tileDomain.Key{Zoom: 10, X: int(savedAt.Unix() % 1000003), Y: 1}, []byte("t"), savedAt)))
}

func TestRetentionSweep_DeletesOnlyStaleCacheEntries(t *testing.T) {
	f, _ := newRetentionFixture(t)
	ctx := context.Background()

	maxAge := 30 * 24 * time.Hour
	f.seedAged(t, time.Now().UTC().Add(-maxAge-time.Hour)) // stale
	f.seedAged(t, time.Now().UTC().Add(-time.Hour))        // fresh

	// An old unsynced session must survive any retention sweep.
	old := time.Now().UTC().Add(-90 * 24 * time.Hour)
	sess := sessionDomain.Reconstruct(uuid.New(), old.Add(-time.Hour), old, 500, 25, coords(), false, old)
	require.NoError(t, f.sessions.Save(ctx, sess))

	svc := application.NewRetentionService(f.routes, f.places, f.tiles, f.sessions, maxAge, 0, zap.NewNop())

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.RoutesDeleted)
	assert.Equal(t, int64(1), report.PlacesDeleted)
	assert.Equal(t, int64(1), report.TilesDeleted)
	assert.Equal(t, int64(0), report.SessionsPurged)
	assert.Empty(t, report.Errors)

	_, err = f.sessions.FindByID(ctx, sess.ID())
	assert.NoError(t, err)

	remaining, err := f.routes.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestRetentionSweep_SyncedSessionPurgePolicy(t *testing.T) {
	f, _ := newRetentionFixture(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	syncedOld := sessionDomain.Reconstruct(uuid.New(), old.Add(-time.Hour), old, 500, 25, coords(), true, old)
	unsyncedOld := sessionDomain.Reconstruct(uuid.New(), old.Add(-time.Hour), old, 900, 45, coords(), false, old)
	require.NoError(t, f.sessions.Save(ctx, syncedOld))
	require.NoError(t, f.sessions.Save(ctx, unsyncedOld))

	svc := application.NewRetentionService(f.routes, f.places, f.tiles, f.sessions,
		30*24*time.Hour, 30*24*time.Hour, zap.NewNop())

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.SessionsPurged)

	_, err = f.sessions.FindByID(ctx, syncedOld.ID())
	assert.True(t, shared.IsNotFound(err))
	_, err = f.sessions.FindByID(ctx, unsyncedOld.ID())
	assert.NoError(t, err)
}

// failingRouteRepo simulates a collection whose sweep fails.
type failingRouteRepo struct{}

func (failingRouteRepo) Save(context.Context, *routeDomain.CachedRoute) error { return nil }
func (failingRouteRepo) FindByID(context.Context, uuid.UUID) (*routeDomain.CachedRoute, error) {
	return nil, shared.NewNotFoundError("CachedRoute", "")
}
func (failingRouteRepo) FindAll(context.Context) ([]*routeDomain.CachedRoute, error) {
	return nil, nil
}
func (failingRouteRepo) DeleteByID(context.Context, uuid.UUID) error { return nil }
func (failingRouteRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, shared.NewTransactionError("expire routes", errors.New("disk I/O error"))
}

func TestRetentionSweep_PartialFailureDoesNotAbortOthers(t *testing.T) {
	f, _ := newRetentionFixture(t)
	ctx := context.Background()

	f.seedAged(t, time.Now().UTC().Add(-40*24*time.Hour))

	svc := application.NewRetentionService(failingRouteRepo{}, f.places, f.tiles, f.sessions,
		30*24*time.Hour, 0, zap.NewNop())

	report, err := svc.Sweep(ctx)
	require.Error(t, err)
	require.Len(t, report.Errors, 1)

	// Places and tiles were still swept despite the route failure.
	assert.Equal(t, int64(1), report.PlacesDeleted)
	assert.Equal(t, int64(1), report.TilesDeleted)
}
