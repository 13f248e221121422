// Package store persists load test runs and their analysis in SQLite so
// results survive process restarts and can be listed later.
package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestRun is one orchestrated load test run. Payload holds the run's
// serialized results and analysis as JSON.
type TestRun struct {
	ID          string `gorm:"primaryKey;size:64"`
	TestName    string
	Level       int
	Status      string `gorm:"index"`
	Payload     string `gorm:"type:text"`
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrRunNotFound = errors.New("store: test run not found")

type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path, creating and migrating it as
// needed. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&TestRun{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateRun records the start of a run.
func (s *Store) CreateRun(id, testName string, level int) error {
	run := TestRun{
		ID:       id,
		TestName: testName,
		Level:    level,
		Status:   StatusRunning,
	}
	if err := s.db.Create(&run).Error; err != nil {
		return fmt.Errorf("store: create run %s: %w", id, err)
	}
	return nil
}

// CompleteRun marks a run finished with its final status and payload.
func (s *Store) CompleteRun(id, status, payload string) error {
	now := time.Now()
	result := s.db.Model(&TestRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"payload":      payload,
		"completed_at": &now,
	})
	if result.Error != nil {
		return fmt.Errorf("store: complete run %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun fetches one run by id.
func (s *Store) GetRun(id string) (*TestRun, error) {
	var run TestRun
	err := s.db.First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]TestRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []TestRun
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}

// Prune deletes completed runs older than the retention window and returns
// how many rows were removed. Running entries are never pruned.
func (s *Store) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := s.db.Where("status <> ? AND created_at < ?", StatusRunning, cutoff).Delete(&TestRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("store: prune: %w", result.Error)
	}
	return result.RowsAffected, nil
}
