package testutil

import (
	"context"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/domain/settings"
	"github.com/flexprice/invoicegen/internal/repository/memory"
)

// FailingInvoiceStore wraps the in-memory store and fails Create with Err when set
type FailingInvoiceStore struct {
	*memory.InvoiceStore
	Err error
}

var _ invoice.Repository = (*FailingInvoiceStore)(nil)

func (s *FailingInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if s.Err != nil {
		return s.Err
	}
	return s.InvoiceStore.Create(ctx, inv)
}

// FailingSettingsStore wraps the in-memory store and fails reservations with ReserveErr when set
type FailingSettingsStore struct {
	*memory.SettingsStore
	ReserveErr error
}

var _ settings.Repository = (*FailingSettingsStore)(nil)

func (s *FailingSettingsStore) ReserveInvoiceNumber(ctx context.Context) (*settings.Reservation, error) {
	if s.ReserveErr != nil {
		return nil, s.ReserveErr
	}
	return s.SettingsStore.ReserveInvoiceNumber(ctx)
}
