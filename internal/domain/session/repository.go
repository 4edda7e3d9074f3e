package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for pending sessions.
//
// Sessions are never age-evicted by retention; they leave the store only via
// the explicit synced-session purge policy (DeleteSyncedOlderThan).
type Repository interface {
	// Save inserts the session or fully replaces an existing record with the same ID.
	Save(ctx context.Context, s *PendingSession) error

	// FindByID retrieves a session by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*PendingSession, error)

	// FindAll retrieves every session; ordering is unspecified.
	FindAll(ctx context.Context) ([]*PendingSession, error)

	// FindUnsynced retrieves sessions with synced=false via the synced index,
	// without a full collection scan.
	FindUnsynced(ctx context.Context) ([]*PendingSession, error)

	// MarkSynced sets synced=true on the single session with the given ID.
	// Idempotent for already-synced sessions; NotFoundError if absent.
	MarkSynced(ctx context.Context, id uuid.UUID) error

	// DeleteSyncedOlderThan removes sessions that are synced AND ended
	// strictly before cutoff, returning the number deleted. Unsynced
	// sessions are never touched.
	DeleteSyncedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
