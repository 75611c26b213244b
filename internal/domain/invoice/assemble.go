package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flexprice/invoicegen/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Assemble builds the invoice for an already reserved number. It does no I/O:
// the caller assigns the ID and persists the result. Tax and total are always
// recomputed here, never taken from extraction.
func Assemble(extracted ExtractedFields, overrides Overrides, invoiceNumber string, now time.Time) (*Invoice, error) {
	base, err := parseAmount("baseAmount", extracted.BaseAmount)
	if err != nil {
		return nil, err
	}
	pct, err := parseAmount("gstPercentage", extracted.GSTPercentage)
	if err != nil {
		return nil, err
	}

	gst := base.Mul(pct).Div(hundred)

	paymentMethod := overrides.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = types.DefaultPaymentMethod
	}

	source := extracted.Source
	if source == "" {
		source = ExtractionSourceAI
	}

	return &Invoice{
		InvoiceNumber:      invoiceNumber,
		ClientName:         strings.TrimSpace(extracted.ClientName),
		ClientAddress:      strings.TrimSpace(overrides.ClientAddress),
		ServiceDescription: strings.TrimSpace(extracted.ServiceDescription),
		PaymentMethod:      paymentMethod,
		BaseAmount:         base,
		GSTPercentage:      pct,
		GSTAmount:          gst,
		TotalAmount:        base.Add(gst),
		DueDate:            ParseDueDate(extracted.DueDate),
		ExtractionSource:   source,
		CreatedAt:          now.UTC(),
	}, nil
}
