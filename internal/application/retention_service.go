package application

import (
	"context"
	"time"

	placeDomain "github.com/amble-mobility/offline-engine/internal/domain/place"
	routeDomain "github.com/amble-mobility/offline-engine/internal/domain/route"
	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	tileDomain "github.com/amble-mobility/offline-engine/internal/domain/tile"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RetentionReport summarizes one retention sweep. Errors holds the messages
// of collections whose sweep failed; the other collections still completed.
type RetentionReport struct {
	RoutesDeleted  int64    `json:"routes_deleted"`
	PlacesDeleted  int64    `json:"places_deleted"`
	TilesDeleted   int64    `json:"tiles_deleted"`
	SessionsPurged int64    `json:"sessions_purged"`
	Errors         []string `json:"errors,omitempty"`
}

// RetentionService bounds storage growth by deleting cached routes, places
// and tiles older than the configured age. Pending sessions are never
// age-evicted; synced sessions are purged only under the optional
// synced-session retention policy.
type RetentionService struct {
	routes   routeDomain.Repository
	places   placeDomain.Repository
	tiles    tileDomain.Repository
	sessions sessionDomain.Repository

	maxAge time.Duration
	// syncedSessionRetention of zero keeps synced sessions forever.
	syncedSessionRetention time.Duration
	logger                 *zap.Logger
}

// NewRetentionService creates a RetentionService with the given age policies.
func NewRetentionService(
	routes routeDomain.Repository,
	places placeDomain.Repository,
	tiles tileDomain.Repository,
	sessions sessionDomain.Repository,
	maxAge time.Duration,
	syncedSessionRetention time.Duration,
	logger *zap.Logger,
) *RetentionService {
	return &RetentionService{
		routes:                 routes,
		places:                 places,
		tiles:                  tiles,
		sessions:               sessions,
		maxAge:                 maxAge,
		syncedSessionRetention: syncedSessionRetention,
		logger:                 logger,
	}
}

// Sweep deletes records saved strictly before now minus the retention age.
// Each collection is swept to completion independently: a failure in one is
// recorded in the report and does not abort the others. The returned error
// aggregates the per-collection failures, nil when everything completed.
func (s *RetentionService) Sweep(ctx context.Context) (*RetentionReport, error) {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	report := &RetentionReport{}
	var errs error

	if n, err := s.routes.DeleteOlderThan(ctx, cutoff); err != nil {
		errs = multierr.Append(errs, err)
		report.Errors = append(report.Errors, err.Error())
		s.logger.Error("retention sweep failed for routes", zap.Error(err))
	} else {
		report.RoutesDeleted = n
	}

	if n, err := s.places.DeleteOlderThan(ctx, cutoff); err != nil {
		errs = multierr.Append(errs, err)
		report.Errors = append(report.Errors, err.Error())
		s.logger.Error("retention sweep failed for places", zap.Error(err))
	} else {
		report.PlacesDeleted = n
	}

	if n, err := s.tiles.DeleteOlderThan(ctx, cutoff); err != nil {
		errs = multierr.Append(errs, err)
		report.Errors = append(report.Errors, err.Error())
		s.logger.Error("retention sweep failed for tiles", zap.Error(err))
	} else {
		report.TilesDeleted = n
	}

	if s.syncedSessionRetention > 0 {
		sessionCutoff := time.Now().UTC().Add(-s.syncedSessionRetention)
		if n, err := s.sessions.DeleteSyncedOlderThan(ctx, sessionCutoff); err != nil {
			errs = multierr.Append(errs, err)
			report.Errors = append(report.Errors, err.Error())
			s.logger.Error("retention sweep failed for synced sessions", zap.Error(err))
		} else {
			report.SessionsPurged = n
		}
	}

	s.logger.Info("retention sweep finished",
		zap.Int64("routes_deleted", report.RoutesDeleted),
		zap.Int64("places_deleted", report.PlacesDeleted),
		zap.Int64("tiles_deleted", report.TilesDeleted),
		zap.Int64("sessions_purged", report.SessionsPurged),
		zap.Int("failures", len(report.Errors)),
	)
	return report, errs
}

// Start runs a sweep every interval until the context is cancelled. This
// blocks; run it on its own goroutine. Sweep failures are logged, never
// fatal.
func (s *RetentionService) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("scheduled retention sweep completed with failures", zap.Error(err))
			}
		}
	}
}
