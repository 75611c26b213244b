package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/postgres"
	sqliteRepo "github.com/flexprice/invoicegen/internal/repository/sqlite"
	"github.com/flexprice/invoicegen/internal/types"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Storage.Driver {
	case types.StorageDriverPostgres:
		migratePostgres(ctx, cfg, logger, *dryRun)
	case types.StorageDriverSQLite:
		migrateSQLite(cfg, logger, *dryRun)
	default:
		logger.Infow("Storage driver has no schema, nothing to migrate", "driver", cfg.Storage.Driver)
	}

	fmt.Println("Migration process completed")
}

func migratePostgres(ctx context.Context, cfg *config.Configuration, logger *logger.Logger, dryRun bool) {
	if dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		migrations, err := postgres.Migrations()
		if err != nil {
			logger.Fatalw("Failed to read migrations", "error", err)
		}
		for _, m := range migrations {
			fmt.Printf("-- %s\n%s\n", m.Name, m.SQL)
		}
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.Migrate(ctx); err != nil {
		logger.Fatalw("Failed to create schema resources", "error", err)
	}
	logger.Info("Migration completed successfully")
}

func migrateSQLite(cfg *config.Configuration, logger *logger.Logger, dryRun bool) {
	db, err := sqliteRepo.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to open sqlite database", "error", err, "path", cfg.SQLite.Path)
	}

	if dryRun {
		logger.Info("Dry run mode - reporting tables without migrating")
		for _, table := range sqliteRepo.Tables() {
			fmt.Printf("%s exists=%t\n", table, db.Migrator().HasTable(table))
		}
		return
	}

	logger.Info("Running database migrations...")
	if err := sqliteRepo.Migrate(db); err != nil {
		logger.Fatalw("Failed to migrate sqlite database", "error", err)
	}
	logger.Info("Migration completed successfully")
}
