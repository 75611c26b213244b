package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/flexprice/invoicegen/internal/api/dto"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/domain/settings"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/extraction"
	"github.com/flexprice/invoicegen/internal/storage"
	"github.com/flexprice/invoicegen/internal/testutil"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	serviceSuite
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_SequentialNumbers() {
	s.expectExtraction(aiFields(), nil)

	var numbers []string
	for i := 0; i < 3; i++ {
		resp, err := s.generate("Bill Acme Corp 5000 for a website redesign, 18% GST")
		s.Require().NoError(err)
		numbers = append(numbers, resp.InvoiceNumber)
	}

	s.Equal([]string{"INV-001", "INV-002", "INV-003"}, numbers)
	s.Equal(int64(4), s.counter())
	s.Len(s.GetStores().DocumentStore.Keys(), 3)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_AssemblesInvoice() {
	s.expectExtraction(aiFields(), nil)

	resp, err := s.service.GenerateInvoice(s.GetContext(), dto.GenerateInvoiceRequest{
		Prompt:        "Bill Acme Corp 5000",
		ClientAddress: "  42 Park Street, Kolkata ",
		PaymentMethod: "upi",
	})
	s.Require().NoError(err)

	s.Regexp(`^inv_[0-9A-Z]{26}$`, resp.ID)
	s.Equal("Acme Corp", resp.ClientName)
	s.Equal("42 Park Street, Kolkata", resp.ClientAddress)
	s.Equal(types.PaymentMethodUPI, resp.PaymentMethod)
	s.True(decimal.NewFromInt(900).Equal(resp.GSTAmount))
	s.True(decimal.NewFromInt(5900).Equal(resp.TotalAmount))
	s.Require().NotNil(resp.DueDate)
	s.Equal("2026-11-30", resp.DueDate.Format("2006-01-02"))
	s.Equal(invoice.ExtractionSourceAI, resp.ExtractionSource)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.InvoiceNumber, stored.InvoiceNumber)

	ok, err := s.GetStores().DocumentStore.Exists(s.GetContext(), storage.InvoiceKey(resp.ID))
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(storage.ContentTypePDF, s.GetStores().DocumentStore.ContentType(storage.InvoiceKey(resp.ID)))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_EmptyPromptConsumesNothing() {
	_, err := s.generate("   ")

	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.GetExtractor().AssertNotCalled(s.T(), "Extract", mock.Anything, mock.Anything)
	s.Equal(int64(1), s.counter())
	s.Equal(0, s.GetStores().InvoiceRepo.Count())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_InvalidPaymentMethod() {
	_, err := s.service.GenerateInvoice(s.GetContext(), dto.GenerateInvoiceRequest{
		Prompt:        "Bill Acme Corp 5000",
		PaymentMethod: "Bitcoin",
	})

	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.GetExtractor().AssertNotCalled(s.T(), "Extract", mock.Anything, mock.Anything)
	s.Equal(int64(1), s.counter())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ExtractionFailureWithFailPolicy() {
	s.expectExtraction(nil, ierr.NewError("upstream unavailable").Mark(ierr.ErrExtraction))
	s.params.Extractor = extraction.NewPolicyExtractor(s.GetExtractor(), types.ExtractionFailurePolicyFail, s.GetLogger())
	s.build()

	_, err := s.generate("Bill Acme Corp 5000")

	s.Require().Error(err)
	s.True(ierr.IsExtraction(err))
	s.Equal(int64(1), s.counter())
	s.Equal(0, s.GetStores().InvoiceRepo.Count())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ExtractionFailureWithFallbackPolicy() {
	s.expectExtraction(nil, ierr.NewError("upstream unavailable").Mark(ierr.ErrExtraction))
	s.params.Extractor = extraction.NewPolicyExtractor(s.GetExtractor(), types.ExtractionFailurePolicyFallback, s.GetLogger())
	s.build()

	resp, err := s.generate("Bill Acme Corp 5000")

	s.Require().NoError(err)
	s.Equal("INV-001", resp.InvoiceNumber)
	s.Equal(invoice.ExtractionSourceFallback, resp.ExtractionSource)
	s.Equal("Mock Client Ltd", resp.ClientName)
	s.True(decimal.NewFromInt(180).Equal(resp.GSTAmount))
	s.True(decimal.NewFromInt(1180).Equal(resp.TotalAmount))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_UnmarkedExtractorErrorIsExtraction() {
	s.expectExtraction(nil, context.DeadlineExceeded)

	_, err := s.generate("Bill Acme Corp 5000")

	s.Require().Error(err)
	s.True(ierr.IsExtraction(err))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_NonNumericAmountBurnsNoNumber() {
	fields := aiFields()
	fields.BaseAmount = "five thousand"
	s.expectExtraction(fields, nil)

	_, err := s.generate("Bill Acme Corp five thousand")

	s.Require().Error(err)
	s.True(ierr.IsExtraction(err))
	s.Equal(int64(1), s.counter())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ReservationFailure() {
	s.expectExtraction(aiFields(), nil)
	s.GetStores().SettingsRepo.ReserveErr = ierr.NewError("connection reset").Mark(ierr.ErrDatabase)

	_, err := s.generate("Bill Acme Corp 5000")

	s.Require().Error(err)
	s.True(ierr.IsNumbering(err))
	s.Equal(0, s.GetStores().InvoiceRepo.Count())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_PersistFailureLeavesGap() {
	s.expectExtraction(aiFields(), nil)
	s.GetStores().InvoiceRepo.Err = ierr.NewError("disk full").Mark(ierr.ErrDatabase)

	_, err := s.generate("Bill Acme Corp 5000")
	s.Require().Error(err)
	s.Equal(int64(2), s.counter())

	s.GetStores().InvoiceRepo.Err = nil
	resp, err := s.generate("Bill Acme Corp 5000")
	s.Require().NoError(err)
	s.Equal("INV-002", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_DuplicateNumberSurfaces() {
	s.expectExtraction(aiFields(), nil)
	s.GetStores().InvoiceRepo.Err = invoice.NewDuplicateNumberError(errors.New("unique violation"), "INV-001")

	_, err := s.generate("Bill Acme Corp 5000")

	s.Require().Error(err)
	s.True(ierr.IsDuplicateNumber(err))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ArtifactFailureIsSwallowed() {
	s.expectExtraction(aiFields(), nil)
	docs := s.GetStores().DocumentStore
	docs.FailPuts = -1

	resp, err := s.generate("Bill Acme Corp 5000")

	s.Require().NoError(err)
	s.Equal("INV-001", resp.InvoiceNumber)
	s.Empty(docs.Keys())
	s.Equal(int(s.GetConfig().Artifacts.MaxRetries)+1, docs.PutCalls())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_RendererPanicIsSwallowed() {
	s.expectExtraction(aiFields(), nil)
	generator := new(testutil.MockPDFGenerator)
	generator.On("RenderInvoicePdf", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("renderer crashed") }).
		Return(nil, nil)
	s.params.PDFGenerator = generator
	s.build()

	var resp *dto.InvoiceResponse
	var err error
	s.NotPanics(func() {
		resp, err = s.generate("Bill Acme Corp 5000")
	})

	s.Require().NoError(err)
	s.Equal("INV-001", resp.InvoiceNumber)
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.InvoiceNumber, stored.InvoiceNumber)
	s.Empty(s.GetStores().DocumentStore.Keys())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ArtifactRetriesTransientFailure() {
	s.expectExtraction(aiFields(), nil)
	docs := s.GetStores().DocumentStore
	docs.FailPuts = 1

	resp, err := s.generate("Bill Acme Corp 5000")

	s.Require().NoError(err)
	s.Equal(2, docs.PutCalls())
	s.Contains(docs.Keys(), storage.InvoiceKey(resp.ID))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ArtifactSurvivesCallerCancellation() {
	s.expectExtraction(aiFields(), nil)
	ctx, cancel := context.WithCancel(s.GetContext())

	resp, err := s.service.GenerateInvoice(ctx, dto.GenerateInvoiceRequest{Prompt: "Bill Acme Corp 5000"})
	cancel()
	s.Require().NoError(err)

	s.Contains(s.GetStores().DocumentStore.Keys(), storage.InvoiceKey(resp.ID))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_AsyncArtifactsDrainOnShutdown() {
	s.expectExtraction(aiFields(), nil)
	cfg := *s.GetConfig()
	cfg.Artifacts.Async = true
	cfg.Artifacts.PoolSize = 2
	s.params.Config = &cfg
	s.build()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		resp, err := s.generate("Bill Acme Corp 5000")
		s.Require().NoError(err)
		ids = append(ids, resp.ID)
	}

	s.Require().NoError(s.artifacts.Shutdown(context.Background()))
	for _, id := range ids {
		s.Contains(s.GetStores().DocumentStore.Keys(), storage.InvoiceKey(id))
	}
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_ConcurrentRequestsGetDistinctNumbers() {
	s.expectExtraction(aiFields(), nil)
	const n = 50

	numbers := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.generate("Bill Acme Corp 5000")
			errs[i] = err
			if err == nil {
				numbers[i] = resp.InvoiceNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}
	s.Len(lo.Uniq(numbers), n)
	s.Equal(int64(n+1), s.counter())
	s.Contains(numbers, "INV-001")
	s.Contains(numbers, "INV-050")
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_UsesConfiguredCounterAndPrefix() {
	s.expectExtraction(aiFields(), nil)
	s.GetStores().SettingsRepo.Seed(&settings.Settings{
		CompanyName:       "Globex",
		Prefix:            "GLX/",
		NextInvoiceNumber: 1234,
	})

	resp, err := s.generate("Bill Acme Corp 5000")

	s.Require().NoError(err)
	s.Equal("GLX/1234", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestGetAndListInvoices() {
	s.expectExtraction(aiFields(), nil)
	first, err := s.generate("first")
	s.Require().NoError(err)
	second, err := s.generate("second")
	s.Require().NoError(err)

	got, err := s.service.GetInvoice(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.Equal(first.InvoiceNumber, got.InvoiceNumber)

	_, err = s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.True(ierr.IsNotFound(err))

	list, err := s.service.ListInvoices(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)
}
