package repository

import (
	"context"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/domain/settings"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/postgres"
	"github.com/flexprice/invoicegen/internal/repository/memory"
	postgresRepo "github.com/flexprice/invoicegen/internal/repository/postgres"
	sqliteRepo "github.com/flexprice/invoicegen/internal/repository/sqlite"
	"github.com/flexprice/invoicegen/internal/types"
	"go.uber.org/fx"
)

// Repositories is the set of stores the services depend on
type Repositories struct {
	fx.Out

	InvoiceRepo  invoice.Repository
	SettingsRepo settings.Repository
}

// NewRepositories opens the backend selected by storage.driver and closes it
// when the application stops.
func NewRepositories(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (Repositories, error) {
	switch cfg.Storage.Driver {
	case types.StorageDriverPostgres:
		db, err := postgres.NewDB(cfg, log)
		if err != nil {
			return Repositories{}, ierr.WithError(err).
				WithHint("failed to connect to postgres").
				Mark(ierr.ErrDatabase)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				db.Close()
				return nil
			},
		})
		return Repositories{
			InvoiceRepo:  postgresRepo.NewInvoiceRepository(db, log),
			SettingsRepo: postgresRepo.NewSettingsRepository(db, log),
		}, nil

	case types.StorageDriverSQLite:
		db, err := sqliteRepo.NewDB(cfg, log)
		if err != nil {
			return Repositories{}, ierr.WithError(err).
				WithHint("failed to open sqlite database").
				Mark(ierr.ErrDatabase)
		}
		// the local file backend keeps its schema current on start
		if err := sqliteRepo.Migrate(db); err != nil {
			return Repositories{}, ierr.WithError(err).
				WithHint("failed to migrate sqlite database").
				Mark(ierr.ErrDatabase)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})
		return Repositories{
			InvoiceRepo:  sqliteRepo.NewInvoiceRepository(db, log),
			SettingsRepo: sqliteRepo.NewSettingsRepository(db, log),
		}, nil

	case types.StorageDriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return Repositories{
			InvoiceRepo:  memory.NewInvoiceStore(),
			SettingsRepo: memory.NewSettingsStore(),
		}, nil

	default:
		return Repositories{}, ierr.NewErrorf("unknown storage driver %q", cfg.Storage.Driver).
			Mark(ierr.ErrValidation)
	}
}
