package tile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
)

// Key is a composite tile coordinate descriptor (zoom/x/y).
type Key struct {
	Zoom int `json:"zoom"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// String renders the key in "z/x/y" form, the store's primary key.
func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Zoom, k.X, k.Y)
}

// ParseKey parses a "z/x/y" descriptor into a Key. Exactly three numeric
// components are required; anything else is rejected.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Key{}, shared.NewValidationError(fmt.Sprintf("invalid tile key %q", s))
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Key{}, shared.NewValidationError(fmt.Sprintf("invalid tile key %q", s))
		}
		nums[i] = n
	}
	return Key{Zoom: nums[0], X: nums[1], Y: nums[2]}, nil
}

// CachedTile is an opaque map imagery tile. Write-once per key; a refetch
// overwrites the payload wholesale.
type CachedTile struct {
	key     Key
	payload []byte
	savedAt time.Time
}

// NewCachedTile creates a cached tile with a non-empty payload.
func NewCachedTile(key Key, payload []byte) (*CachedTile, error) {
	if len(payload) == 0 {
		return nil, shared.NewValidationError("tile payload is required")
	}
	return &CachedTile{
		key:     key,
		payload: payload,
		savedAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a CachedTile from persistence data (no validation).
func Reconstruct(key Key, payload []byte, savedAt time.Time) *CachedTile {
	return &CachedTile{key: key, payload: payload, savedAt: savedAt}
}

// Key returns the tile coordinate descriptor.
func (t *CachedTile) Key() Key { return t.key }

// Payload returns the opaque tile bytes.
func (t *CachedTile) Payload() []byte { return t.payload }

// SavedAt returns the time the tile was cached.
func (t *CachedTile) SavedAt() time.Time { return t.savedAt }
