package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStore keeps invoices in process memory. Used by the memory storage
// driver and by service tests.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
	numbers  map[string]string
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
		numbers:  make(map[string]string),
	}
}

var _ invoice.Repository = (*InvoiceStore)(nil)

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	if inv.DueDate != nil {
		c.DueDate = lo.ToPtr(*inv.DueDate)
	}
	return &c
}

func (s *InvoiceStore) Create(_ context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[inv.ID]; ok {
		return ierr.NewErrorf("invoice %s already exists", inv.ID).
			WithHint("An invoice with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if _, ok := s.numbers[inv.InvoiceNumber]; ok {
		return invoice.NewDuplicateNumberError(
			ierr.NewErrorf("invoice number %s already used", inv.InvoiceNumber).Error(),
			inv.InvoiceNumber,
		)
	}

	s.invoices[inv.ID] = copyInvoice(inv)
	s.numbers[inv.InvoiceNumber] = inv.ID
	return nil
}

func (s *InvoiceStore) Get(_ context.Context, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, invoice.NewNotFoundError(id)
	}
	return copyInvoice(inv), nil
}

func (s *InvoiceStore) List(_ context.Context) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*invoice.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, copyInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns the number of stored invoices
func (s *InvoiceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices)
}

// Clear removes every invoice
func (s *InvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*invoice.Invoice)
	s.numbers = make(map[string]string)
}
