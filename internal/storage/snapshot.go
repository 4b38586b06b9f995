// Package storage is the persistence gateway: a durable key-value store that
// holds one serialized snapshot of the whole library under a fixed root key.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/hnedelkov/bookshelf/internal/library"
)

// RootKey is the single key under which the library snapshot is stored.
const RootKey = "library"

// SnapshotRecord is the durable row holding the serialized snapshot.
type SnapshotRecord struct {
	Key       string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}

// Store persists library snapshots in a SQLite database.
type Store struct {
	DB *gorm.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Snapshot store initialized at %s", dbPath)
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save serializes the snapshot and upserts it under the root key.
func (s *Store) Save(snap library.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	record := SnapshotRecord{Key: RootKey, Data: data, UpdatedAt: time.Now().UTC()}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, if any. An absent or corrupt record is
// treated as a first run: ok is false and no error is returned, so startup
// falls back to the empty default library instead of failing.
func (s *Store) Load() (library.Snapshot, bool, error) {
	var record SnapshotRecord
	err := s.DB.Where("key = ?", RootKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return library.Snapshot{}, false, nil
	}
	if err != nil {
		return library.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap library.Snapshot
	if err := json.Unmarshal(record.Data, &snap); err != nil {
		log.Printf("WARNING: stored snapshot is corrupt, starting fresh: %v", err)
		return library.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Ping checks database connectivity for health reporting.
func (s *Store) Ping() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
