package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionModel is the GORM model for the sessions collection. The synced
// column is indexed so the sync sweep can fetch pending sessions without a
// full scan.
type SessionModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StartedAt    time.Time       `gorm:"not null"`
	EndedAt      time.Time       `gorm:"not null"`
	DistanceM    float64         `gorm:"not null"`
	RewardPoints int64           `gorm:"not null"`
	Path         json.RawMessage `gorm:"type:text"`
	Synced       bool            `gorm:"not null;index;default:false"`
	RecordedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SessionModel) TableName() string { return "sessions" }

// GormSessionRepository is the GORM-based implementation of session.Repository.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Save inserts the session or fully replaces an existing record with the same ID.
func (r *GormSessionRepository) Save(ctx context.Context, s *sessionDomain.PendingSession) error {
	model, err := toSessionModel(s)
	if err != nil {
		return shared.NewTransactionError("save session", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error; err != nil {
		return shared.NewTransactionError("save session", err)
	}
	return nil
}

// FindByID retrieves a session by its identifier.
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*sessionDomain.PendingSession, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("PendingSession", id.String())
		}
		return nil, shared.NewTransactionError("find session", err)
	}
	return toDomainSession(&model)
}

// FindAll retrieves every session.
func (r *GormSessionRepository) FindAll(ctx context.Context) ([]*sessionDomain.PendingSession, error) {
	var models []SessionModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, shared.NewTransactionError("list sessions", err)
	}
	return toDomainSessions(models)
}

// FindUnsynced retrieves sessions with synced=false via the synced index.
func (r *GormSessionRepository) FindUnsynced(ctx context.Context) ([]*sessionDomain.PendingSession, error) {
	var models []SessionModel
	if err := r.db.WithContext(ctx).Where("synced = ?", false).Find(&models).Error; err != nil {
		return nil, shared.NewTransactionError("list unsynced sessions", err)
	}
	return toDomainSessions(models)
}

// MarkSynced sets synced=true on the single session with the given ID.
// Idempotent for already-synced sessions.
func (r *GormSessionRepository) MarkSynced(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ?", id).
		Update("synced", true)
	if result.Error != nil {
		return shared.NewTransactionError("mark session synced", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("PendingSession", id.String())
	}
	return nil
}

// DeleteSyncedOlderThan removes synced sessions that ended strictly before
// cutoff. Unsynced sessions are never touched.
func (r *GormSessionRepository) DeleteSyncedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("synced = ? AND ended_at < ?", true, cutoff).
		Delete(&SessionModel{})
	if result.Error != nil {
		return 0, shared.NewTransactionError("purge synced sessions", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion Helpers ---

func toSessionModel(s *sessionDomain.PendingSession) (*SessionModel, error) {
	pathJSON, err := json.Marshal(s.Path())
	if err != nil {
		return nil, err
	}
	return &SessionModel{
		ID:           s.ID(),
		StartedAt:    s.StartedAt(),
		EndedAt:      s.EndedAt(),
		DistanceM:    s.DistanceM(),
		RewardPoints: s.RewardPoints(),
		Path:         pathJSON,
		Synced:       s.Synced(),
		RecordedAt:   s.RecordedAt(),
	}, nil
}

func toDomainSession(m *SessionModel) (*sessionDomain.PendingSession, error) {
	var path []shared.Coordinate
	if len(m.Path) > 0 {
		if err := json.Unmarshal(m.Path, &path); err != nil {
			return nil, shared.NewTransactionError("decode session path", err)
		}
	}
	return sessionDomain.Reconstruct(
		m.ID,
		m.StartedAt,
		m.EndedAt,
		m.DistanceM,
		m.RewardPoints,
		path,
		m.Synced,
		m.RecordedAt,
	), nil
}

func toDomainSessions(models []SessionModel) ([]*sessionDomain.PendingSession, error) {
	sessions := make([]*sessionDomain.PendingSession, len(models))
	for i, m := range models {
		s, err := toDomainSession(&m)
		if err != nil {
			return nil, err
		}
		sessions[i] = s
	}
	return sessions, nil
}
