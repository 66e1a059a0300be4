// Package store persists the side-level fields that survive a save/load:
// completion, the last activated round and the inspiration window.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nstehr/vimy/tactics-core/model"
)

type sideRecord struct {
	SideID                  string `gorm:"primaryKey"`
	IsComplete              bool
	LastActivatedRound      int
	InspirationWindow       float64
	InspirationTargetDamage float64
	UpdatedAt               time.Time
}

func (sideRecord) TableName() string { return "sides" }

type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path, or an in-memory database
// when path is empty, and migrates the schema.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open side store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("side store handle: %w", err)
	}
	// Every connection to ":memory:" is a new database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sideRecord{}); err != nil {
		return nil, fmt.Errorf("migrate side store: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the persistent fields of side.
func (s *Store) Save(side *model.Side) error {
	rec := sideRecord{
		SideID:                  side.ID,
		IsComplete:              side.IsComplete,
		LastActivatedRound:      side.LastActivatedRound,
		InspirationWindow:       side.InspirationWindow,
		InspirationTargetDamage: side.InspirationTargetDamage,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save side %s: %w", side.ID, err)
	}
	return nil
}

// Load restores side's persistent fields. It reports false when nothing was
// saved for the side.
func (s *Store) Load(side *model.Side) (bool, error) {
	var rec sideRecord
	err := s.db.First(&rec, "side_id = ?", side.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load side %s: %w", side.ID, err)
	}
	side.IsComplete = rec.IsComplete
	side.LastActivatedRound = rec.LastActivatedRound
	side.InspirationWindow = rec.InspirationWindow
	side.InspirationTargetDamage = rec.InspirationTargetDamage
	return true, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
