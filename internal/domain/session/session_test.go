package session_test

import (
	"testing"
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPath() []shared.Coordinate {
	return []shared.Coordinate{
		{Latitude: 3.139, Longitude: 101.6869},
		{Latitude: 3.14, Longitude: 101.687},
	}
}

func TestNewPendingSession_StartsUnsynced(t *testing.T) {
	start := time.Now().Add(-30 * time.Minute)
	end := time.Now()

	s, err := session.NewPendingSession(uuid.New(), start, end, 500, 25, validPath())
	require.NoError(t, err)

	assert.False(t, s.Synced())
	assert.Equal(t, float64(500), s.DistanceM())
	assert.Equal(t, int64(25), s.RewardPoints())
	assert.False(t, s.RecordedAt().IsZero())
}

func TestNewPendingSession_Validation(t *testing.T) {
	start := time.Now().Add(-30 * time.Minute)
	end := time.Now()

	tests := []struct {
		name string
		fn   func() (*session.PendingSession, error)
	}{
		{"nil ID", func() (*session.PendingSession, error) {
			return session.NewPendingSession(uuid.Nil, start, end, 500, 25, validPath())
		}},
		{"end before start", func() (*session.PendingSession, error) {
			return session.NewPendingSession(uuid.New(), end, start, 500, 25, validPath())
		}},
		{"end equals start", func() (*session.PendingSession, error) {
			return session.NewPendingSession(uuid.New(), start, start, 500, 25, validPath())
		}},
		{"negative distance", func() (*session.PendingSession, error) {
			return session.NewPendingSession(uuid.New(), start, end, -1, 25, validPath())
		}},
		{"negative reward", func() (*session.PendingSession, error) {
			return session.NewPendingSession(uuid.New(), start, end, 500, -1, validPath())
		}},
		{"out-of-range coordinate", func() (*session.PendingSession, error) {
			return session.NewPendingSession(uuid.New(), start, end, 500, 25,
				[]shared.Coordinate{{Latitude: 95, Longitude: 0}})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			var vErr *shared.ValidationError
			require.ErrorAs(t, err, &vErr)
		})
	}
}

func TestMarkSynced_IdempotentOneWay(t *testing.T) {
	s, err := session.NewPendingSession(uuid.New(),
		time.Now().Add(-time.Hour), time.Now(), 1200, 60, validPath())
	require.NoError(t, err)

	s.MarkSynced()
	assert.True(t, s.Synced())

	// Marking again is a no-op, not an error.
	s.MarkSynced()
	assert.True(t, s.Synced())
}
