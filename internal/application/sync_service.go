package application

import (
	"context"
	"sync/atomic"
	"time"

	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"go.uber.org/zap"
)

// SessionSubmitter delivers one pending session to the rewards backend.
type SessionSubmitter interface {
	SubmitSession(ctx context.Context, s *sessionDomain.PendingSession) error
}

// SyncReport summarizes one sync sweep.
type SyncReport struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// SyncService drains not-yet-synced sessions to the rewards backend. Delivery
// is at-least-once from the client's perspective; the backend de-duplicates
// by session ID. Sweeps are serialized by an in-flight guard so a manual
// trigger racing a connectivity-edge trigger cannot double-submit a session.
type SyncService struct {
	repo      sessionDomain.Repository
	submitter SessionSubmitter
	timeout   time.Duration
	logger    *zap.Logger

	inFlight atomic.Bool
}

// NewSyncService creates a SyncService. timeout bounds each individual
// session submission.
func NewSyncService(
	repo sessionDomain.Repository,
	submitter SessionSubmitter,
	timeout time.Duration,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		repo:      repo,
		submitter: submitter,
		timeout:   timeout,
		logger:    logger,
	}
}

// Sweep fetches every session with synced=false and attempts to deliver each
// independently: a failed submission leaves that session untouched and the
// sweep continues. A session is marked synced only after a positive
// acknowledgment. Sessions created mid-sweep are left for the next trigger.
// Returns ErrSweepInProgress when another sweep holds the guard.
func (s *SyncService) Sweep(ctx context.Context) (*SyncReport, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, shared.ErrSweepInProgress
	}
	defer s.inFlight.Store(false)

	pending, err := s.repo.FindUnsynced(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Attempted: len(pending)}
	for _, sess := range pending {
		if err := s.submitOne(ctx, sess); err != nil {
			report.Failed++
			s.logger.Warn("session delivery failed, will retry on next sweep",
				zap.String("session_id", sess.ID().String()),
				zap.Error(err),
			)
			continue
		}
		report.Delivered++
	}

	s.logger.Info("sync sweep finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// SweepOnConnectivity is the connectivity-edge subscriber: it runs a sweep
// and swallows every failure, since retry-on-next-edge is the recovery path.
func (s *SyncService) SweepOnConnectivity() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil && err != shared.ErrSweepInProgress {
		s.logger.Error("connectivity-triggered sweep failed", zap.Error(err))
	}
}

// submitOne delivers a single session and marks it synced on acknowledgment.
func (s *SyncService) submitOne(ctx context.Context, sess *sessionDomain.PendingSession) error {
	subCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.submitter.SubmitSession(subCtx, sess); err != nil {
		return err
	}
	return s.repo.MarkSynced(ctx, sess.ID())
}
