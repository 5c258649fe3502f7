package database

import (
	"log"
	"time"

	"github.com/codyseavey/sld-tracker/internal/models"
	"gorm.io/gorm"
)

// RunMigrations runs data fixes that AutoMigrate cannot express.
// Each step is safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	return cleanupOrphanDropCards(db)
}

// cleanupOrphanDropCards removes drop_cards rows whose drop no longer exists.
// Databases written before foreign keys were enabled can contain them.
func cleanupOrphanDropCards(db *gorm.DB) error {
	if !db.Migrator().HasTable("drop_cards") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM drop_cards
		WHERE drop_id NOT IN (SELECT id FROM drops)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d orphaned drop_cards entries", result.RowsAffected)
	}
	return nil
}

// FailInterruptedRuns marks runs left "running" by a previous server process
// as failed. Call it from the server only; a CLI sharing the database could
// otherwise fail a refresh the live server is still running.
func FailInterruptedRuns(db *gorm.DB) error {
	now := time.Now()
	result := db.Model(&models.SyncRun{}).
		Where("status = ?", models.SyncStatusRunning).
		Updates(map[string]interface{}{
			"status":      models.SyncStatusFailed,
			"finished_at": now,
			"error":       "interrupted by restart",
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Marked %d interrupted sync runs as failed", result.RowsAffected)
	}
	return nil
}
