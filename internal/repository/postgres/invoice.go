package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/postgres"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/shopspring/decimal"
)

const invoiceNumberConstraint = "idx_invoices_invoice_number"

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

type invoiceRow struct {
	ID                 string          `db:"id"`
	InvoiceNumber      string          `db:"invoice_number"`
	ClientName         string          `db:"client_name"`
	ClientAddress      string          `db:"client_address"`
	ServiceDescription string          `db:"service_description"`
	PaymentMethod      string          `db:"payment_method"`
	BaseAmount         decimal.Decimal `db:"base_amount"`
	GSTPercentage      decimal.Decimal `db:"gst_percentage"`
	GSTAmount          decimal.Decimal `db:"gst_amount"`
	TotalAmount        decimal.Decimal `db:"total_amount"`
	DueDate            sql.NullTime    `db:"due_date"`
	ExtractionSource   string          `db:"extraction_source"`
	CreatedAt          time.Time       `db:"created_at"`
}

func (r invoiceRow) toDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:                 r.ID,
		InvoiceNumber:      r.InvoiceNumber,
		ClientName:         r.ClientName,
		ClientAddress:      r.ClientAddress,
		ServiceDescription: r.ServiceDescription,
		PaymentMethod:      types.PaymentMethod(r.PaymentMethod),
		BaseAmount:         r.BaseAmount,
		GSTPercentage:      r.GSTPercentage,
		GSTAmount:          r.GSTAmount,
		TotalAmount:        r.TotalAmount,
		ExtractionSource:   invoice.ExtractionSource(r.ExtractionSource),
		CreatedAt:          r.CreatedAt.UTC(),
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		inv.DueDate = &due
	}
	return inv
}

const invoiceColumns = `
	id, invoice_number, client_name, client_address, service_description,
	payment_method, base_amount, gst_percentage, gst_amount, total_amount,
	due_date, extraction_source, created_at`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	INSERT INTO invoices (` + invoiceColumns + `
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
	)`

	var dueDate sql.NullTime
	if inv.DueDate != nil {
		dueDate = sql.NullTime{Time: *inv.DueDate, Valid: true}
	}

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.InvoiceNumber,
		inv.ClientName,
		inv.ClientAddress,
		inv.ServiceDescription,
		string(inv.PaymentMethod),
		inv.BaseAmount,
		inv.GSTPercentage,
		inv.GSTAmount,
		inv.TotalAmount,
		dueDate,
		string(inv.ExtractionSource),
		inv.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, invoiceNumberConstraint) {
			return invoice.NewDuplicateNumberError(err, inv.InvoiceNumber)
		}
		if postgres.IsUniqueViolation(err, "") {
			return ierr.WithError(err).
				WithHint("An invoice with this ID already exists").
				WithReportableDetails(map[string]any{"invoiceId": inv.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to save invoice").
			WithReportableDetails(map[string]any{
				"invoiceId":     inv.ID,
				"invoiceNumber": inv.InvoiceNumber,
			}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("created invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var row invoiceRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice").
			WithReportableDetails(map[string]any{"invoiceId": id}).
			Mark(ierr.ErrDatabase)
	}

	return row.toDomain(), nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC, id DESC`

	var rows []invoiceRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	out := make([]*invoice.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
