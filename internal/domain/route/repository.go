package route

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for cached routes.
type Repository interface {
	// Save inserts the route or fully replaces an existing record with the same ID.
	Save(ctx context.Context, r *CachedRoute) error

	// FindByID retrieves a route by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*CachedRoute, error)

	// FindAll retrieves every cached route; ordering is unspecified.
	FindAll(ctx context.Context) ([]*CachedRoute, error)

	// DeleteByID removes a route; no-op if absent.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteOlderThan removes every route saved strictly before cutoff and
	// returns the number of records deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
