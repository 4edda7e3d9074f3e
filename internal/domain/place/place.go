package place

import (
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// CachedPlace is a locally cached point of interest with its accessibility
// feature tags. Replaced wholesale on re-save with the same identifier.
type CachedPlace struct {
	id       uuid.UUID
	name     string
	address  string
	location shared.Coordinate
	features []string
	rating   float64
	savedAt  time.Time
}

// NewCachedPlace creates a cached place, validating the domain rules.
func NewCachedPlace(
	id uuid.UUID,
	name string,
	address string,
	location shared.Coordinate,
	features []string,
	rating float64,
) (*CachedPlace, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("place ID is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("place name is required")
	}
	if !location.Valid() {
		return nil, shared.NewValidationError("place location is out of range")
	}
	if rating < 0 {
		return nil, shared.NewValidationError("place rating cannot be negative")
	}

	return &CachedPlace{
		id:       id,
		name:     name,
		address:  address,
		location: location,
		features: dedupe(features),
		rating:   rating,
		savedAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a CachedPlace from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name string,
	address string,
	location shared.Coordinate,
	features []string,
	rating float64,
	savedAt time.Time,
) *CachedPlace {
	return &CachedPlace{
		id:       id,
		name:     name,
		address:  address,
		location: location,
		features: features,
		rating:   rating,
		savedAt:  savedAt,
	}
}

// dedupe removes duplicate feature tags while preserving first-seen order.
func dedupe(features []string) []string {
	seen := make(map[string]bool, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ID returns the place's unique identifier.
func (p *CachedPlace) ID() uuid.UUID { return p.id }

// Name returns the place name.
func (p *CachedPlace) Name() string { return p.name }

// Address returns the display address.
func (p *CachedPlace) Address() string { return p.address }

// Location returns the place coordinate.
func (p *CachedPlace) Location() shared.Coordinate { return p.location }

// Features returns the accessibility feature tags.
func (p *CachedPlace) Features() []string { return p.features }

// Rating returns the place rating.
func (p *CachedPlace) Rating() float64 { return p.rating }

// SavedAt returns the time the place was cached.
func (p *CachedPlace) SavedAt() time.Time { return p.savedAt }
