package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	tileDomain "github.com/amble-mobility/offline-engine/internal/domain/tile"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TileModel is the GORM model for the map_tiles collection. The key is the
// "z/x/y" tile coordinate descriptor.
type TileModel struct {
	Key     string    `gorm:"primaryKey;size:40"`
	Payload []byte    `gorm:"not null"`
	SavedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (TileModel) TableName() string { return "map_tiles" }

// GormTileRepository is the GORM-based implementation of tile.Repository.
type GormTileRepository struct {
	db *gorm.DB
}

// NewGormTileRepository creates a new GormTileRepository.
func NewGormTileRepository(db *gorm.DB) *GormTileRepository {
	return &GormTileRepository{db: db}
}

// Save inserts the tile or overwrites an existing record wholesale.
func (r *GormTileRepository) Save(ctx context.Context, t *tileDomain.CachedTile) error {
	model := &TileModel{
		Key:     t.Key().String(),
		Payload: t.Payload(),
		SavedAt: t.SavedAt(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error; err != nil {
		return shared.NewTransactionError("save tile", err)
	}
	return nil
}

// FindByKey retrieves a tile by its coordinate descriptor.
func (r *GormTileRepository) FindByKey(ctx context.Context, key tileDomain.Key) (*tileDomain.CachedTile, error) {
	var model TileModel
	if err := r.db.WithContext(ctx).Where("key = ?", key.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("CachedTile", key.String())
		}
		return nil, shared.NewTransactionError("find tile", err)
	}
	return tileDomain.Reconstruct(key, model.Payload, model.SavedAt), nil
}

// DeleteByKey removes a tile; no-op if absent.
func (r *GormTileRepository) DeleteByKey(ctx context.Context, key tileDomain.Key) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key.String()).Delete(&TileModel{}).Error; err != nil {
		return shared.NewTransactionError("delete tile", err)
	}
	return nil
}

// DeleteOlderThan removes every tile saved strictly before cutoff.
func (r *GormTileRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("saved_at < ?", cutoff).Delete(&TileModel{})
	if result.Error != nil {
		return 0, shared.NewTransactionError("expire tiles", result.Error)
	}
	return result.RowsAffected, nil
}
