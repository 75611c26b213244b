package invoice

import (
	"context"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create persists a new invoice. A clash on invoice number is reported as
	// ierr.ErrDuplicateNumber.
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// List returns every invoice, newest first
	List(ctx context.Context) ([]*Invoice, error)
}
