package sqlite

import (
	"strings"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to a sqlite database. The pool is capped at one connection:
// sqlite has a single writer, and funnelling every statement through one
// connection makes each UPDATE .. RETURNING a serialized step.
func Open(dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: log.GetGormLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	log.Infow("opened sqlite database", "dsn", dsn)
	return db, nil
}

// NewDB opens the database configured under sqlite.path
func NewDB(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	dsn := cfg.SQLite.Path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_journal_mode=WAL"
	}
	return Open(dsn, log)
}

// Migrate creates or updates the tables for the sqlite backend
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&settingsModel{}, &invoiceModel{})
}

// Tables lists the tables Migrate manages
func Tables() []string {
	return []string{settingsModel{}.TableName(), invoiceModel{}.TableName()}
}
