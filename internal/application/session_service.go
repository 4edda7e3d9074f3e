package application

import (
	"context"
	"time"

	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordSessionRequest holds the data for a finished tracking session. The ID
// is expected from the client so resubmissions stay idempotent on the
// backend; one is generated when omitted.
type RecordSessionRequest struct {
	ID           *uuid.UUID          `json:"id"`
	StartedAt    time.Time           `json:"started_at" binding:"required"`
	EndedAt      time.Time           `json:"ended_at" binding:"required"`
	DistanceM    float64             `json:"distance_m"`
	RewardPoints int64               `json:"reward_points"`
	Path         []shared.Coordinate `json:"path"`
}

// SessionDTO is the API representation of a pending session.
type SessionDTO struct {
	ID           uuid.UUID           `json:"id"`
	StartedAt    time.Time           `json:"started_at"`
	EndedAt      time.Time           `json:"ended_at"`
	DistanceM    float64             `json:"distance_m"`
	RewardPoints int64               `json:"reward_points"`
	Path         []shared.Coordinate `json:"path"`
	Synced       bool                `json:"synced"`
	RecordedAt   time.Time           `json:"recorded_at"`
}

// SessionService handles recording and reading pending sessions. Marking a
// session synced is reserved for the sync orchestrator.
type SessionService struct {
	repo   sessionDomain.Repository
	logger *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo sessionDomain.Repository, logger *zap.Logger) *SessionService {
	return &SessionService{repo: repo, logger: logger}
}

// RecordSession stores a finished tracking session with synced=false. Works
// identically online and offline; delivery happens on the next sync sweep.
func (s *SessionService) RecordSession(ctx context.Context, req RecordSessionRequest) (*SessionDTO, error) {
	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}

	sess, err := sessionDomain.NewPendingSession(id, req.StartedAt, req.EndedAt, req.DistanceM, req.RewardPoints, req.Path)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("session recorded",
		zap.String("session_id", sess.ID().String()),
		zap.Float64("distance_m", sess.DistanceM()),
		zap.Int64("reward_points", sess.RewardPoints()),
	)

	dto := toSessionDTO(sess)
	return &dto, nil
}

// GetSession returns one session.
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toSessionDTO(sess)
	return &dto, nil
}

// ListSessions returns sessions, optionally filtered by synced status. The
// synced=false filter uses the indexed query.
func (s *SessionService) ListSessions(ctx context.Context, synced *bool) ([]SessionDTO, error) {
	var (
		sessions []*sessionDomain.PendingSession
		err      error
	)
	switch {
	case synced != nil && !*synced:
		sessions, err = s.repo.FindUnsynced(ctx)
	default:
		sessions, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]SessionDTO, 0, len(sessions))
	for _, sess := range sessions {
		if synced != nil && *synced && !sess.Synced() {
			continue
		}
		dtos = append(dtos, toSessionDTO(sess))
	}
	return dtos, nil
}

func toSessionDTO(sess *sessionDomain.PendingSession) SessionDTO {
	return SessionDTO{
		ID:           sess.ID(),
		StartedAt:    sess.StartedAt(),
		EndedAt:      sess.EndedAt(),
		DistanceM:    sess.DistanceM(),
		RewardPoints: sess.RewardPoints(),
		Path:         sess.Path(),
		Synced:       sess.Synced(),
		RecordedAt:   sess.RecordedAt(),
	}
}
