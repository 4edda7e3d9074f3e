package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	routeDomain "github.com/amble-mobility/offline-engine/internal/domain/route"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RouteModel is the GORM model for the routes collection.
type RouteModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name               string          `gorm:"not null;size:200"`
	Path               json.RawMessage `gorm:"type:text;not null"`
	DistanceMeters     float64         `gorm:"not null"`
	AccessibilityScore float64         `gorm:"not null"`
	SavedAt            time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (RouteModel) TableName() string { return "routes" }

// GormRouteRepository is the GORM-based implementation of route.Repository.
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GormRouteRepository.
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// Save inserts the route or fully replaces an existing record with the same ID.
func (r *GormRouteRepository) Save(ctx context.Context, rt *routeDomain.CachedRoute) error {
	model, err := toRouteModel(rt)
	if err != nil {
		return shared.NewTransactionError("save route", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error; err != nil {
		return shared.NewTransactionError("save route", err)
	}
	return nil
}

// FindByID retrieves a route by its unique identifier.
func (r *GormRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*routeDomain.CachedRoute, error) {
	var model RouteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("CachedRoute", id.String())
		}
		return nil, shared.NewTransactionError("find route", err)
	}
	return toDomainRoute(&model)
}

// FindAll retrieves every cached route.
func (r *GormRouteRepository) FindAll(ctx context.Context) ([]*routeDomain.CachedRoute, error) {
	var models []RouteModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, shared.NewTransactionError("list routes", err)
	}

	routes := make([]*routeDomain.CachedRoute, len(models))
	for i, m := range models {
		rt, err := toDomainRoute(&m)
		if err != nil {
			return nil, err
		}
		routes[i] = rt
	}
	return routes, nil
}

// DeleteByID removes a route; no-op if absent.
func (r *GormRouteRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RouteModel{}).Error; err != nil {
		return shared.NewTransactionError("delete route", err)
	}
	return nil
}

// DeleteOlderThan removes every route saved strictly before cutoff.
func (r *GormRouteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("saved_at < ?", cutoff).Delete(&RouteModel{})
	if result.Error != nil {
		return 0, shared.NewTransactionError("expire routes", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion Helpers ---

func toRouteModel(rt *routeDomain.CachedRoute) (*RouteModel, error) {
	pathJSON, err := json.Marshal(rt.Path())
	if err != nil {
		return nil, err
	}
	return &RouteModel{
		ID:                 rt.ID(),
		Name:               rt.Name(),
		Path:               pathJSON,
		DistanceMeters:     rt.DistanceMeters(),
		AccessibilityScore: rt.AccessibilityScore(),
		SavedAt:            rt.SavedAt(),
	}, nil
}

func toDomainRoute(m *RouteModel) (*routeDomain.CachedRoute, error) {
	var path []shared.Coordinate
	if err := json.Unmarshal(m.Path, &path); err != nil {
		return nil, shared.NewTransactionError("decode route path", err)
	}
	return routeDomain.Reconstruct(
		m.ID,
		m.Name,
		path,
		m.DistanceMeters,
		m.AccessibilityScore,
		m.SavedAt,
	), nil
}
