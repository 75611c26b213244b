package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Amounts are stored as text so sqlite's numeric affinity never rounds them
type invoiceModel struct {
	ID                 string          `gorm:"primaryKey"`
	InvoiceNumber      string          `gorm:"uniqueIndex:idx_invoices_invoice_number;not null"`
	ClientName         string          `gorm:"not null;default:''"`
	ClientAddress      string          `gorm:"not null;default:''"`
	ServiceDescription string          `gorm:"not null;default:''"`
	PaymentMethod      string          `gorm:"not null"`
	BaseAmount         decimal.Decimal `gorm:"type:text;not null"`
	GSTPercentage      decimal.Decimal `gorm:"type:text;not null"`
	GSTAmount          decimal.Decimal `gorm:"type:text;not null"`
	TotalAmount        decimal.Decimal `gorm:"type:text;not null"`
	DueDate            *time.Time
	ExtractionSource   string    `gorm:"not null;default:'ai'"`
	CreatedAt          time.Time `gorm:"index:idx_invoices_created_at;not null"`
}

func (invoiceModel) TableName() string {
	return "invoices"
}

func invoiceModelFrom(inv *invoice.Invoice) *invoiceModel {
	return &invoiceModel{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		ClientName:         inv.ClientName,
		ClientAddress:      inv.ClientAddress,
		ServiceDescription: inv.ServiceDescription,
		PaymentMethod:      string(inv.PaymentMethod),
		BaseAmount:         inv.BaseAmount,
		GSTPercentage:      inv.GSTPercentage,
		GSTAmount:          inv.GSTAmount,
		TotalAmount:        inv.TotalAmount,
		DueDate:            inv.DueDate,
		ExtractionSource:   string(inv.ExtractionSource),
		CreatedAt:          inv.CreatedAt,
	}
}

func (m *invoiceModel) toDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:                 m.ID,
		InvoiceNumber:      m.InvoiceNumber,
		ClientName:         m.ClientName,
		ClientAddress:      m.ClientAddress,
		ServiceDescription: m.ServiceDescription,
		PaymentMethod:      types.PaymentMethod(m.PaymentMethod),
		BaseAmount:         m.BaseAmount,
		GSTPercentage:      m.GSTPercentage,
		GSTAmount:          m.GSTAmount,
		TotalAmount:        m.TotalAmount,
		ExtractionSource:   invoice.ExtractionSource(m.ExtractionSource),
		CreatedAt:          m.CreatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		inv.DueDate = &due
	}
	return inv
}

type invoiceRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *gorm.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoiceModelFrom(inv)).Error; err != nil {
		if isUniqueViolation(err, "invoice_number") {
			return invoice.NewDuplicateNumberError(err, inv.InvoiceNumber)
		}
		if isUniqueViolation(err, "") {
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
	var m invoiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice").
			WithReportableDetails(map[string]any{"invoiceId": id}).
			Mark(ierr.ErrDatabase)
	}
	return m.toDomain(), nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	out := make([]*invoice.Invoice, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

// isUniqueViolation matches sqlite's "UNIQUE constraint failed: table.column"
func isUniqueViolation(err error, column string) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return false
	}
	return column == "" || strings.Contains(sqliteErr.Error(), "."+column)
}
