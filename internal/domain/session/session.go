package session

import (
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// PendingSession is a locally recorded walking session awaiting delivery to
// the rewards backend. The synced flag is the only mutable field: it
// transitions false→true exactly once, after a positive remote
// acknowledgment, and never back.
type PendingSession struct {
	id           uuid.UUID
	startedAt    time.Time
	endedAt      time.Time
	distanceM    float64
	rewardPoints int64
	path         []shared.Coordinate
	synced       bool
	recordedAt   time.Time
}

// NewPendingSession creates a pending session with synced=false. The ID is
// client-generated so the rewards backend can de-duplicate resubmissions.
func NewPendingSession(
	id uuid.UUID,
	startedAt time.Time,
	endedAt time.Time,
	distanceM float64,
	rewardPoints int64,
	path []shared.Coordinate,
) (*PendingSession, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("session ID is required")
	}
	if startedAt.IsZero() || endedAt.IsZero() {
		return nil, shared.NewValidationError("session start and end times are required")
	}
	if !endedAt.After(startedAt) {
		return nil, shared.NewValidationError("session end must be after start")
	}
	if distanceM < 0 {
		return nil, shared.NewValidationError("session distance cannot be negative")
	}
	if rewardPoints < 0 {
		return nil, shared.NewValidationError("session reward points cannot be negative")
	}
	for _, c := range path {
		if !c.Valid() {
			return nil, shared.NewValidationError("session path contains an out-of-range coordinate")
		}
	}

	return &PendingSession{
		id:           id,
		startedAt:    startedAt.UTC(),
		endedAt:      endedAt.UTC(),
		distanceM:    distanceM,
		rewardPoints: rewardPoints,
		path:         path,
		synced:       false,
		recordedAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a PendingSession from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	startedAt time.Time,
	endedAt time.Time,
	distanceM float64,
	rewardPoints int64,
	path []shared.Coordinate,
	synced bool,
	recordedAt time.Time,
) *PendingSession {
	return &PendingSession{
		id:           id,
		startedAt:    startedAt,
		endedAt:      endedAt,
		distanceM:    distanceM,
		rewardPoints: rewardPoints,
		path:         path,
		synced:       synced,
		recordedAt:   recordedAt,
	}
}

// MarkSynced flips the synced flag. Idempotent: marking an already-synced
// session is a no-op. There is no reverse transition.
func (s *PendingSession) MarkSynced() {
	s.synced = true
}

// ID returns the session's client-generated identifier.
func (s *PendingSession) ID() uuid.UUID { return s.id }

// StartedAt returns the session start time.
func (s *PendingSession) StartedAt() time.Time { return s.startedAt }

// EndedAt returns the session end time.
func (s *PendingSession) EndedAt() time.Time { return s.endedAt }

// DistanceM returns the distance travelled in meters.
func (s *PendingSession) DistanceM() float64 { return s.distanceM }

// RewardPoints returns the reward units earned.
func (s *PendingSession) RewardPoints() int64 { return s.rewardPoints }

// Path returns the ordered coordinate sequence.
func (s *PendingSession) Path() []shared.Coordinate { return s.path }

// Synced reports whether the rewards backend has acknowledged this session.
func (s *PendingSession) Synced() bool { return s.synced }

// RecordedAt returns the time the session was written to the local store.
func (s *PendingSession) RecordedAt() time.Time { return s.recordedAt }
