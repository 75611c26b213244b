package service

import (
	"context"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
)

// NumberingService hands out invoice numbers. A number is consumed as soon as
// it is reserved: if the invoice is never persisted the number is skipped,
// never reissued.
type NumberingService interface {
	ReserveInvoiceNumber(ctx context.Context) (string, error)
}

type numberingService struct {
	ServiceParams
}

func NewNumberingService(params ServiceParams) NumberingService {
	return &numberingService{ServiceParams: params}
}

func (s *numberingService) ReserveInvoiceNumber(ctx context.Context) (string, error) {
	res, err := s.SettingsRepo.ReserveInvoiceNumber(ctx)
	if err != nil {
		if !ierr.IsNumbering(err) {
			err = ierr.WithError(err).
				WithHint("Failed to reserve an invoice number").
				Mark(ierr.ErrNumbering)
		}
		return "", err
	}

	number := invoice.FormatNumber(res.Prefix, res.Value)
	s.Logger.Debugw("reserved invoice number", "invoice_number", number, "counter", res.Value)
	return number, nil
}
