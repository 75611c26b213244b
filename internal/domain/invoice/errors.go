package invoice

import (
	ierr "github.com/flexprice/invoicegen/internal/errors"
)

// NewNotFoundError builds the error returned for an unknown invoice id
func NewNotFoundError(id string) error {
	return ierr.NewErrorf("invoice %s not found", id).
		WithHintf("Invoice with ID %s was not found", id).
		WithReportableDetails(map[string]any{
			"invoiceId": id,
		}).
		Mark(ierr.ErrNotFound)
}

// NewDuplicateNumberError builds the error returned when an invoice number is
// already taken by a persisted invoice.
func NewDuplicateNumberError(err error, number string) error {
	return ierr.WithError(err).
		WithHintf("Invoice number %s has already been issued", number).
		WithReportableDetails(map[string]any{
			"invoiceNumber": number,
		}).
		Mark(ierr.ErrDuplicateNumber)
}
