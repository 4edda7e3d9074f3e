package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrations is the versioned schema path. Index i upgrades the store from
// schema version i to i+1; Open applies every migration above the recorded
// version inside a transaction.
var migrations = []func(tx *gorm.DB) error{
	migrateInitialSchema,
}

// schemaVersionModel records the applied schema version (single row).
type schemaVersionModel struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (schemaVersionModel) TableName() string { return "schema_migrations" }

// migrateInitialSchema creates the four collections and their indices.
func migrateInitialSchema(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&RouteModel{},
		&PlaceModel{},
		&SessionModel{},
		&TileModel{},
	)
}

// Store owns the sqlite-backed local store handle. Open is idempotent:
// concurrent callers converge on a single initialized *gorm.DB, and a failed
// open may be retried on a later call.
type Store struct {
	path string

	mu sync.Mutex
	db *gorm.DB
}

// NewStore creates a Store for the sqlite file at path. Nothing is opened
// until Open is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Open initializes the store, creating collections and indices if absent.
// Safe to call repeatedly; only the first successful call initializes.
// Returns StoreUnavailableError when the file cannot be opened or the schema
// migration fails.
func (s *Store) Open() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, shared.NewStoreUnavailable(err)
	}

	if err := migrate(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, shared.NewStoreUnavailable(err)
	}

	s.db = db
	return s.db, nil
}

// Close releases the underlying database handle. A closed store can be
// reopened with Open.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

// migrate applies every schema migration above the recorded version.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaVersionModel{}); err != nil {
		return fmt.Errorf("failed to prepare schema version table: %w", err)
	}

	var current schemaVersionModel
	if err := db.First(&current).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		current = schemaVersionModel{ID: 1, Version: 0}
		if err := db.Create(&current).Error; err != nil {
			return fmt.Errorf("failed to initialize schema version: %w", err)
		}
	}

	for v := current.Version; v < len(migrations); v++ {
		step := migrations[v]
		next := v + 1
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step(tx); err != nil {
				return err
			}
			return tx.Model(&schemaVersionModel{}).
				Where("id = ?", current.ID).
				Update("version", next).Error
		})
		if err != nil {
			return fmt.Errorf("schema migration to version %d failed: %w", next, err)
		}
	}
	return nil
}

// Usage is a best-effort snapshot of local storage consumption, used for
// diagnostics only.
type Usage struct {
	UsedBytes int64 `json:"used_bytes"`
	PageCount int64 `json:"page_count"`
	PageSize  int64 `json:"page_size"`
}

// Usage reports how much storage the store currently occupies. Degrades to
// zero values when the figures cannot be read; it never fails.
func (s *Store) Usage(ctx context.Context) Usage {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()

	if db == nil {
		return Usage{}
	}

	var pageCount, pageSize int64
	if err := db.WithContext(ctx).Raw("PRAGMA page_count").Scan(&pageCount).Error; err != nil {
		return Usage{}
	}
	if err := db.WithContext(ctx).Raw("PRAGMA page_size").Scan(&pageSize).Error; err != nil {
		return Usage{}
	}

	return Usage{
		UsedBytes: pageCount * pageSize,
		PageCount: pageCount,
		PageSize:  pageSize,
	}
}
