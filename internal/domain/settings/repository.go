package settings

import (
	"context"
)

// Repository persists the settings singleton. Every implementation creates the
// record with defaults on first access.
type Repository interface {
	// Get returns the settings, creating them with defaults when absent
	Get(ctx context.Context) (*Settings, error)

	// Update applies a partial change in one atomic store operation and
	// returns the resulting record
	Update(ctx context.Context, update Update) (*Settings, error)

	// ReserveInvoiceNumber reads the counter and persists counter+1 as one
	// atomic step. Concurrent callers never observe the same value.
	ReserveInvoiceNumber(ctx context.Context) (*Reservation, error)
}
