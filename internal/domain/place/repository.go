package place

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for cached places.
type Repository interface {
	// Save inserts the place or fully replaces an existing record with the same ID.
	Save(ctx context.Context, p *CachedPlace) error

	// FindByID retrieves a place by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*CachedPlace, error)

	// FindAll retrieves every cached place; ordering is unspecified.
	FindAll(ctx context.Context) ([]*CachedPlace, error)

	// DeleteByID removes a place; no-op if absent.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteOlderThan removes every place saved strictly before cutoff and
	// returns the number of records deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
