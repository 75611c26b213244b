package sqlite

import (
	"context"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/settings"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsID = 1

type settingsModel struct {
	ID                int    `gorm:"primaryKey;autoIncrement:false"`
	CompanyName       string `gorm:"not null"`
	CompanyAddress    string `gorm:"not null"`
	CompanyTaxID      string `gorm:"not null;default:''"`
	Prefix            string `gorm:"not null"`
	NextInvoiceNumber int64  `gorm:"not null;default:1"`
	LogoPath          string `gorm:"not null;default:''"`
	UpdatedAt         time.Time
}

func (settingsModel) TableName() string {
	return "settings"
}

func (m *settingsModel) toDomain() *settings.Settings {
	return &settings.Settings{
		CompanyName:       m.CompanyName,
		CompanyAddress:    m.CompanyAddress,
		CompanyTaxID:      m.CompanyTaxID,
		Prefix:            m.Prefix,
		NextInvoiceNumber: m.NextInvoiceNumber,
		LogoPath:          m.LogoPath,
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type settingsRepository struct {
	db     *gorm.DB
	logger *logger.Logger
	now    func() time.Time
}

func NewSettingsRepository(db *gorm.DB, logger *logger.Logger) settings.Repository {
	return &settingsRepository{db: db, logger: logger, now: time.Now}
}

func (r *settingsRepository) ensure(tx *gorm.DB) error {
	d := settings.Default(r.now())
	row := &settingsModel{
		ID:                settingsID,
		CompanyName:       d.CompanyName,
		CompanyAddress:    d.CompanyAddress,
		Prefix:            d.Prefix,
		NextInvoiceNumber: d.NextInvoiceNumber,
		UpdatedAt:         d.UpdatedAt,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

func (r *settingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var m settingsModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx); err != nil {
			return err
		}
		return tx.First(&m, settingsID).Error
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load settings").
			Mark(ierr.ErrDatabase)
	}
	return m.toDomain(), nil
}

func (r *settingsRepository) Update(ctx context.Context, update settings.Update) (*settings.Settings, error) {
	changes := map[string]any{"updated_at": r.now().UTC()}
	addString := func(column string, v *string) {
		if v != nil && *v != "" {
			changes[column] = *v
		}
	}
	addString("company_name", update.CompanyName)
	addString("company_address", update.CompanyAddress)
	addString("company_tax_id", update.CompanyTaxID)
	addString("prefix", update.Prefix)
	addString("logo_path", update.LogoPath)
	if update.NextInvoiceNumber != nil && *update.NextInvoiceNumber > 0 {
		changes["next_invoice_number"] = *update.NextInvoiceNumber
	}

	var m settingsModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx); err != nil {
			return err
		}
		if err := tx.Model(&settingsModel{}).Where("id = ?", settingsID).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&m, settingsID).Error
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update settings").
			Mark(ierr.ErrDatabase)
	}
	return m.toDomain(), nil
}

type reservationRow struct {
	Prefix string
	Value  int64
}

func (r *settingsRepository) ReserveInvoiceNumber(ctx context.Context) (*settings.Reservation, error) {
	var row reservationRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx); err != nil {
			return err
		}
		return tx.Raw(`
			UPDATE settings
			SET next_invoice_number = MAX(next_invoice_number, 1) + 1,
				updated_at = ?
			WHERE id = ?
			RETURNING prefix, next_invoice_number - 1 AS value`,
			r.now().UTC(), settingsID,
		).Scan(&row).Error
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to reserve an invoice number").
			Mark(ierr.ErrNumbering)
	}

	r.logger.Infow("reserved invoice number", "prefix", row.Prefix, "value", row.Value)
	return &settings.Reservation{Prefix: row.Prefix, Value: row.Value}, nil
}
