package testutil

import (
	"context"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/extraction"
	"github.com/stretchr/testify/mock"
)

var _ extraction.Extractor = (*MockExtractor)(nil)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, prompt string) (*invoice.ExtractedFields, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.ExtractedFields), args.Error(1)
}
