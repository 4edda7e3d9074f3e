package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	placeDomain "github.com/amble-mobility/offline-engine/internal/domain/place"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceModel is the GORM model for the places collection.
type PlaceModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"not null;size:200"`
	Address   string          `gorm:"size:500"`
	Latitude  float64         `gorm:"not null"`
	Longitude float64         `gorm:"not null"`
	Features  json.RawMessage `gorm:"type:text"`
	Rating    float64         `gorm:"not null"`
	SavedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (PlaceModel) TableName() string { return "places" }

// GormPlaceRepository is the GORM-based implementation of place.Repository.
type GormPlaceRepository struct {
	db *gorm.DB
}

// NewGormPlaceRepository creates a new GormPlaceRepository.
func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

// Save inserts the place or fully replaces an existing record with the same ID.
func (r *GormPlaceRepository) Save(ctx context.Context, p *placeDomain.CachedPlace) error {
	model, err := toPlaceModel(p)
	if err != nil {
		return shared.NewTransactionError("save place", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error; err != nil {
		return shared.NewTransactionError("save place", err)
	}
	return nil
}

// FindByID retrieves a place by its unique identifier.
func (r *GormPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*placeDomain.CachedPlace, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("CachedPlace", id.String())
		}
		return nil, shared.NewTransactionError("find place", err)
	}
	return toDomainPlace(&model)
}

// FindAll retrieves every cached place.
func (r *GormPlaceRepository) FindAll(ctx context.Context) ([]*placeDomain.CachedPlace, error) {
	var models []PlaceModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, shared.NewTransactionError("list places", err)
	}

	places := make([]*placeDomain.CachedPlace, len(models))
	for i, m := range models {
		p, err := toDomainPlace(&m)
		if err != nil {
			return nil, err
		}
		places[i] = p
	}
	return places, nil
}

// DeleteByID removes a place; no-op if absent.
func (r *GormPlaceRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PlaceModel{}).Error; err != nil {
		return shared.NewTransactionError("delete place", err)
	}
	return nil
}

// DeleteOlderThan removes every place saved strictly before cutoff.
func (r *GormPlaceRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("saved_at < ?", cutoff).Delete(&PlaceModel{})
	if result.Error != nil {
		return 0, shared.NewTransactionError("expire places", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion Helpers ---

func toPlaceModel(p *placeDomain.CachedPlace) (*PlaceModel, error) {
	featuresJSON, err := json.Marshal(p.Features())
	if err != nil {
		return nil, err
	}
	return &PlaceModel{
		ID:        p.ID(),
		Name:      p.Name(),
		Address:   p.Address(),
		Latitude:  p.Location().Latitude,
		Longitude: p.Location().Longitude,
		Features:  featuresJSON,
		Rating:    p.Rating(),
		SavedAt:   p.SavedAt(),
	}, nil
}

func toDomainPlace(m *PlaceModel) (*placeDomain.CachedPlace, error) {
	var features []string
	if len(m.Features) > 0 {
		if err := json.Unmarshal(m.Features, &features); err != nil {
			return nil, shared.NewTransactionError("decode place features", err)
		}
	}
	return placeDomain.Reconstruct(
		m.ID,
		m.Name,
		m.Address,
		shared.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude},
		features,
		m.Rating,
		m.SavedAt,
	), nil
}
