package route

import (
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// CachedRoute is a locally cached accessible route. Immutable once written;
// a save with the same identifier replaces the record wholesale.
type CachedRoute struct {
	id                 uuid.UUID
	name               string
	path               []shared.Coordinate
	distanceMeters     float64
	accessibilityScore float64
	savedAt            time.Time
}

// NewCachedRoute creates a cached route, validating the domain rules.
func NewCachedRoute(
	id uuid.UUID,
	name string,
	path []shared.Coordinate,
	distanceMeters float64,
	accessibilityScore float64,
) (*CachedRoute, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("route ID is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("route name is required")
	}
	if len(path) < 2 {
		return nil, shared.NewValidationError("route path requires at least two points")
	}
	for _, c := range path {
		if !c.Valid() {
			return nil, shared.NewValidationError("route path contains an out-of-range coordinate")
		}
	}
	if distanceMeters < 0 {
		return nil, shared.NewValidationError("route distance cannot be negative")
	}
	if accessibilityScore < 0 || accessibilityScore > 1 {
		return nil, shared.NewValidationError("accessibility score must be between 0 and 1")
	}

	return &CachedRoute{
		id:                 id,
		name:               name,
		path:               path,
		distanceMeters:     distanceMeters,
		accessibilityScore: accessibilityScore,
		savedAt:            time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a CachedRoute from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name string,
	path []shared.Coordinate,
	distanceMeters float64,
	accessibilityScore float64,
	savedAt time.Time,
) *CachedRoute {
	return &CachedRoute{
		id:                 id,
		name:               name,
		path:               path,
		distanceMeters:     distanceMeters,
		accessibilityScore: accessibilityScore,
		savedAt:            savedAt,
	}
}

// ID returns the route's unique identifier.
func (r *CachedRoute) ID() uuid.UUID { return r.id }

// Name returns the display name.
func (r *CachedRoute) Name() string { return r.name }

// Path returns the ordered coordinate sequence.
func (r *CachedRoute) Path() []shared.Coordinate { return r.path }

// DistanceMeters returns the total route distance.
func (r *CachedRoute) DistanceMeters() float64 { return r.distanceMeters }

// AccessibilityScore returns the route's accessibility score in [0,1].
func (r *CachedRoute) AccessibilityScore() float64 { return r.accessibilityScore }

// SavedAt returns the time the route was cached.
func (r *CachedRoute) SavedAt() time.Time { return r.savedAt }
