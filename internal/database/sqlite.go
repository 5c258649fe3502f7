package database

import (
	"log"
	"strings"

	"github.com/codyseavey/sld-tracker/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the sqlite database at dbPath and migrates the schema.
// verbose turns on gorm's per-query logging.
func Initialize(dbPath string, verbose bool) error {
	db, err := Open(dbPath, verbose)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open is Initialize without touching the package-level handle.
func Open(dbPath string, verbose bool) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	// foreign keys are off by default in sqlite; drop_cards cascade needs them
	dsn := dbPath
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	if err := db.AutoMigrate(&models.DropRecord{}, &models.DropCardRecord{}, &models.SyncRun{}); err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
