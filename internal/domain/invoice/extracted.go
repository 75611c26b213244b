package invoice

import (
	"strings"
	"time"

	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/shopspring/decimal"
)

// ExtractedFields is what the extraction step hands to assembly. Amounts stay
// textual until they are validated so a malformed value is caught in one place.
type ExtractedFields struct {
	ClientName         string
	ServiceDescription string
	BaseAmount         string
	GSTPercentage      string
	// DueDate is YYYY-MM-DD or RFC3339, empty when the prompt names no date
	DueDate string
	Source  ExtractionSource
}

// Overrides are caller supplied values that take precedence over extraction
type Overrides struct {
	ClientAddress string
	PaymentMethod types.PaymentMethod
}

// Validate checks that both amounts are non-negative numbers. It runs before
// an invoice number is reserved so malformed output never consumes a number.
func (f ExtractedFields) Validate() error {
	if _, err := parseAmount("baseAmount", f.BaseAmount); err != nil {
		return err
	}
	if _, err := parseAmount("gstPercentage", f.GSTPercentage); err != nil {
		return err
	}
	return nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("Extracted %s is not a number", field).
			WithReportableDetails(map[string]any{
				"field": field,
				"value": raw,
			}).
			Mark(ierr.ErrExtraction)
	}
	if value.IsNegative() {
		return decimal.Zero, ierr.NewErrorf("%s must not be negative", field).
			WithHintf("Extracted %s must not be negative", field).
			WithReportableDetails(map[string]any{
				"field": field,
				"value": raw,
			}).
			Mark(ierr.ErrExtraction)
	}
	return value, nil
}

var dueDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
}

// ParseDueDate returns nil for an empty or unparseable date, which downstream
// reads as "due immediately".
func ParseDueDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// FallbackFields is the placeholder substituted when extraction is unavailable
// and the fallback policy is active. The due date is the day of generation.
func FallbackFields(now time.Time) ExtractedFields {
	return ExtractedFields{
		ClientName:         "Mock Client Ltd",
		ServiceDescription: "Mock Service (AI extraction unavailable)",
		BaseAmount:         "1000",
		GSTPercentage:      "18",
		DueDate:            now.UTC().Format(time.DateOnly),
		Source:             ExtractionSourceFallback,
	}
}
