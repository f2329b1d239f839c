package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntry is the single table used by the SQL-backed store.
type CacheEntry struct {
	Key       string         `gorm:"primaryKey;size:255"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (CacheEntry) TableName() string { return "cache_entries" }

// GormStore backs the cache with a SQL database (SQLite or Postgres)
// through gorm, one row per key.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&CacheEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache_entries: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry CacheEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}
	return []byte(entry.Payload), nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte) error {
	entry := CacheEntry{
		Key:       key,
		Payload:   datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set cache entry %s: %w", key, err)
	}
	return nil
}
