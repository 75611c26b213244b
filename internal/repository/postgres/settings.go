package postgres

import (
	"context"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/settings"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/postgres"
	"github.com/samber/lo"
)

type settingsRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSettingsRepository(db *postgres.DB, logger *logger.Logger) settings.Repository {
	return &settingsRepository{db: db, logger: logger}
}

type settingsRow struct {
	CompanyName       string    `db:"company_name"`
	CompanyAddress    string    `db:"company_address"`
	CompanyTaxID      string    `db:"company_tax_id"`
	Prefix            string    `db:"prefix"`
	NextInvoiceNumber int64     `db:"next_invoice_number"`
	LogoPath          string    `db:"logo_path"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r settingsRow) toDomain() *settings.Settings {
	return &settings.Settings{
		CompanyName:       r.CompanyName,
		CompanyAddress:    r.CompanyAddress,
		CompanyTaxID:      r.CompanyTaxID,
		Prefix:            r.Prefix,
		NextInvoiceNumber: r.NextInvoiceNumber,
		LogoPath:          r.LogoPath,
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

const settingsColumns = `company_name, company_address, company_tax_id, prefix, next_invoice_number, logo_path, updated_at`

// ensure creates the singleton with column defaults. Concurrent first calls
// race harmlessly on the primary key.
func (r *settingsRepository) ensure(ctx context.Context) error {
	_, err := r.db.GetQuerier(ctx).ExecContext(ctx,
		`INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to initialize settings").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *settingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	var row settingsRow
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row,
		`SELECT `+settingsColumns+` FROM settings WHERE id = 1`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load settings").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *settingsRepository) Update(ctx context.Context, update settings.Update) (*settings.Settings, error) {
	query := `
	UPDATE settings SET
		company_name        = COALESCE(NULLIF($1::text, ''), company_name),
		company_address     = COALESCE(NULLIF($2::text, ''), company_address),
		company_tax_id      = COALESCE(NULLIF($3::text, ''), company_tax_id),
		prefix              = COALESCE(NULLIF($4::text, ''), prefix),
		logo_path           = COALESCE(NULLIF($5::text, ''), logo_path),
		next_invoice_number = CASE WHEN $6::bigint > 0 THEN $6::bigint ELSE next_invoice_number END,
		updated_at          = now()
	WHERE id = 1
	RETURNING ` + settingsColumns

	var row settingsRow
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		if err := r.ensure(ctx); err != nil {
			return err
		}
		return r.db.GetQuerier(ctx).QueryRowxContext(ctx, query,
			lo.FromPtr(update.CompanyName),
			lo.FromPtr(update.CompanyAddress),
			lo.FromPtr(update.CompanyTaxID),
			lo.FromPtr(update.Prefix),
			lo.FromPtr(update.LogoPath),
			lo.FromPtr(update.NextInvoiceNumber),
		).StructScan(&row)
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update settings").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

// ReserveInvoiceNumber relies on the row lock taken by UPDATE: concurrent
// reservations serialize on the singleton and each sees the previous result.
func (r *settingsRepository) ReserveInvoiceNumber(ctx context.Context) (*settings.Reservation, error) {
	query := `
	UPDATE settings
	SET next_invoice_number = GREATEST(next_invoice_number, 1) + 1,
		updated_at = now()
	WHERE id = 1
	RETURNING prefix, next_invoice_number - 1`

	var res settings.Reservation
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		if err := r.ensure(ctx); err != nil {
			return err
		}
		return r.db.GetQuerier(ctx).QueryRowxContext(ctx, query).Scan(&res.Prefix, &res.Value)
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to reserve an invoice number").
			Mark(ierr.ErrNumbering)
	}

	r.logger.Infow("reserved invoice number", "prefix", res.Prefix, "value", res.Value)
	return &res, nil
}
