package invoice

import (
	"time"

	"github.com/flexprice/invoicegen/internal/types"
	"github.com/shopspring/decimal"
)

// ExtractionSource records whether invoice fields came from the model or
// from placeholder data substituted after an extraction failure.
type ExtractionSource string

const (
	ExtractionSourceAI       ExtractionSource = "ai"
	ExtractionSourceFallback ExtractionSource = "fallback"
)

// Invoice represents the invoice domain model. Invoices are append-only: once
// persisted they are never updated or deleted.
type Invoice struct {
	ID                 string              `json:"id"`
	InvoiceNumber      string              `json:"invoiceNumber"`
	ClientName         string              `json:"clientName"`
	ClientAddress      string              `json:"clientAddress"`
	ServiceDescription string              `json:"serviceDescription"`
	PaymentMethod      types.PaymentMethod `json:"paymentMethod"`
	BaseAmount         decimal.Decimal     `json:"baseAmount"`
	GSTPercentage      decimal.Decimal     `json:"gstPercentage"`
	GSTAmount          decimal.Decimal     `json:"gstAmount"`
	TotalAmount        decimal.Decimal     `json:"totalAmount"`
	DueDate            *time.Time          `json:"dueDate"`
	ExtractionSource   ExtractionSource    `json:"extractionSource"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// ArtifactName is the download file name of the rendered document
func (i *Invoice) ArtifactName() string {
	return "invoice-" + i.InvoiceNumber + ".pdf"
}
