package tile

import (
	"context"
	"time"
)

// Repository defines the persistence contract for cached map tiles.
type Repository interface {
	// Save inserts the tile or fully replaces an existing record with the same key.
	Save(ctx context.Context, t *CachedTile) error

	// FindByKey retrieves a tile by its coordinate descriptor.
	FindByKey(ctx context.Context, key Key) (*CachedTile, error)

	// DeleteByKey removes a tile; no-op if absent.
	DeleteByKey(ctx context.Context, key Key) error

	// DeleteOlderThan removes every tile saved strictly before cutoff and
	// returns the number of records deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
