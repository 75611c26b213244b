package service

import (
	"context"
	"time"

	"github.com/flexprice/invoicegen/internal/api/dto"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/types"
)

type InvoiceService interface {
	// GenerateInvoice turns a prompt into a persisted invoice. The stages run
	// in a fixed order: validate, extract, reserve a number, assemble,
	// persist, then produce the document best-effort.
	GenerateInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context) ([]*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	numbering NumberingService
	artifacts ArtifactService
	now       func() time.Time
}

func NewInvoiceService(params ServiceParams, numbering NumberingService, artifacts ArtifactService) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		numbering:     numbering,
		artifacts:     artifacts,
		now:           time.Now,
	}
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	overrides := req.ToOverrides()

	fields, err := s.Extractor.Extract(ctx, req.Prompt)
	if err != nil {
		if !ierr.IsExtraction(err) {
			err = ierr.WithError(err).
				WithHint("Failed to extract invoice details from the prompt").
				Mark(ierr.ErrExtraction)
		}
		return nil, err
	}

	// amounts are checked before a number is reserved so a malformed
	// extraction never leaves a gap in the sequence
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	number, err := s.numbering.ReserveInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := invoice.Assemble(*fields, overrides, number, s.now())
	if err != nil {
		return nil, err
	}
	inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		s.Logger.Errorw("failed to persist invoice, reserved number is skipped",
			"invoice_number", number,
			"error", err,
		)
		if !ierr.IsDuplicateNumber(err) && !ierr.IsAlreadyExists(err) {
			err = ierr.WithError(err).
				WithHint("Failed to save the invoice").
				Mark(ierr.ErrDatabase)
		}
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"extraction_source", inv.ExtractionSource,
	)

	s.artifacts.Produce(ctx, inv)

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]*dto.InvoiceResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceListResponse(invoices), nil
}
