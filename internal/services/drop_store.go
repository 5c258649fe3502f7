package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/codyseavey/sld-tracker/internal/models"
)

// ErrDropNotFound is returned when no stored drop has the requested number.
var ErrDropNotFound = errors.New("drop not found")

// DropStore persists the reconciled drop list and the history of refresh runs.
type DropStore struct {
	db *gorm.DB
}

func NewDropStore(db *gorm.DB) *DropStore {
	return &DropStore{db: db}
}

func orderedCards(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ReplaceAll swaps the stored drop list for drops in one transaction.
// Readers see either the old list or the new one, never a mix.
func (s *DropStore) ReplaceAll(ctx context.Context, runID string, drops []models.EnrichedDrop) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM drop_cards").Error; err != nil {
			return fmt.Errorf("failed to clear drop cards: %w", err)
		}
		if err := tx.Exec("DELETE FROM drops").Error; err != nil {
			return fmt.Errorf("failed to clear drops: %w", err)
		}
		if len(drops) == 0 {
			return nil
		}

		records := make([]models.DropRecord, len(drops))
		for i, d := range drops {
			records[i] = models.NewDropRecord(i, runID, d)
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to store drops: %w", err)
		}
		return nil
	})
}

// List returns every stored drop in table order.
func (s *DropStore) List(ctx context.Context) ([]models.EnrichedDrop, error) {
	var records []models.DropRecord
	err := s.db.WithContext(ctx).
		Preload("Cards", orderedCards).
		Order("position ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drops: %w", err)
	}

	drops := make([]models.EnrichedDrop, len(records))
	for i, r := range records {
		drops[i] = r.ToEnrichedDrop()
	}
	return drops, nil
}

// Get returns the first drop, in table order, with the given drop number.
func (s *DropStore) Get(ctx context.Context, dropNumber string) (*models.EnrichedDrop, error) {
	var record models.DropRecord
	err := s.db.WithContext(ctx).
		Preload("Cards", orderedCards).
		Where("drop_number = ?", dropNumber).
		Order("position ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDropNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drop %s: %w", dropNumber, err)
	}

	drop := record.ToEnrichedDrop()
	return &drop, nil
}

func (s *DropStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.DropRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count drops: %w", err)
	}
	return count, nil
}

// RecordRun inserts or updates a sync run.
func (s *DropStore) RecordRun(ctx context.Context, run *models.SyncRun) error {
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started sync run, or nil when none exist.
func (s *DropStore) LastRun(ctx context.Context) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.WithContext(ctx).Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync run: %w", err)
	}
	return &run, nil
}
