package pdf

import (
	"time"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/domain/settings"
)

// InvoiceData is everything the renderer draws. Amounts are already rounded
// to two places here: rounding happens for display only, never in storage.
type InvoiceData struct {
	ID            string
	InvoiceNumber string
	IssuingDate   time.Time
	DueDate       *time.Time
	PaymentMethod string

	Biller    BillerInfo
	Recipient RecipientInfo
	LineItems []LineItemData

	Subtotal      string
	TaxPercentage string
	TaxAmount     string
	Total         string

	// Logo holds the raw image bytes, LogoType is "PNG" or "JPG"
	Logo     []byte
	LogoType string
}

// BillerInfo contains company information for the invoice issuer
type BillerInfo struct {
	Name    string
	Address string
	TaxID   string
}

// RecipientInfo contains customer information for the invoice recipient
type RecipientInfo struct {
	Name    string
	Address string
}

// LineItemData represents an invoice line item for PDF generation
type LineItemData struct {
	Description   string
	Amount        string
	TaxPercentage string
	Total         string
}

// NewInvoiceData maps a persisted invoice and the current company profile
func NewInvoiceData(inv *invoice.Invoice, s *settings.Settings) *InvoiceData {
	pct := inv.GSTPercentage.String()
	return &InvoiceData{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		IssuingDate:   inv.CreatedAt,
		DueDate:       inv.DueDate,
		PaymentMethod: string(inv.PaymentMethod),
		Biller: BillerInfo{
			Name:    s.CompanyName,
			Address: s.CompanyAddress,
			TaxID:   s.CompanyTaxID,
		},
		Recipient: RecipientInfo{
			Name:    inv.ClientName,
			Address: inv.ClientAddress,
		},
		LineItems: []LineItemData{
			{
				Description:   inv.ServiceDescription,
				Amount:        inv.BaseAmount.StringFixed(2),
				TaxPercentage: pct,
				Total:         inv.TotalAmount.StringFixed(2),
			},
		},
		Subtotal:      inv.BaseAmount.StringFixed(2),
		TaxPercentage: pct,
		TaxAmount:     inv.GSTAmount.StringFixed(2),
		Total:         inv.TotalAmount.StringFixed(2),
	}
}
