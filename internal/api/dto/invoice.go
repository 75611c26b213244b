package dto

import (
	"strings"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/flexprice/invoicegen/internal/validator"
	"github.com/samber/lo"
)

// GenerateInvoiceRequest is the body of POST /invoices/generate
type GenerateInvoiceRequest struct {
	Prompt        string `json:"prompt" validate:"required,max=10000"`
	ClientAddress string `json:"clientAddress,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// Validate checks the request before any side effect happens. A blank prompt
// or an unknown payment method must never consume an invoice number.
func (r *GenerateInvoiceRequest) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.ClientAddress = strings.TrimSpace(r.ClientAddress)

	if r.Prompt == "" {
		return ierr.NewError("prompt is required").
			WithHint("Prompt is required").
			Mark(ierr.ErrValidation)
	}

	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if _, err := types.ParsePaymentMethod(r.PaymentMethod); err != nil {
		return err
	}
	return nil
}

// ToOverrides returns the caller supplied values that win over extraction.
// Call Validate first.
func (r *GenerateInvoiceRequest) ToOverrides() invoice.Overrides {
	method, err := types.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		method = types.DefaultPaymentMethod
	}
	return invoice.Overrides{
		ClientAddress: r.ClientAddress,
		PaymentMethod: method,
	}
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
}

// NewInvoiceResponse wraps a domain invoice
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{Invoice: inv}
}

// NewInvoiceListResponse keeps the repository order, newest first
func NewInvoiceListResponse(invoices []*invoice.Invoice) []*InvoiceResponse {
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *InvoiceResponse {
		return NewInvoiceResponse(inv)
	})
}
