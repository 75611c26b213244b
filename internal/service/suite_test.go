package service

import (
	"github.com/flexprice/invoicegen/internal/api/dto"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/testutil"
	"github.com/stretchr/testify/mock"
)

// serviceSuite wires the real services over in-memory stores
type serviceSuite struct {
	testutil.BaseServiceTestSuite
	params    ServiceParams
	artifacts ArtifactService
	service   InvoiceService
}

func (s *serviceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.params = NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		nil,
		stores.InvoiceRepo,
		stores.SettingsRepo,
		s.GetExtractor(),
		s.GetPDFGenerator(),
		stores.DocumentStore,
	)
	s.build()
}

// build wires the services from s.params, call it again after changing params
func (s *serviceSuite) build() {
	s.artifacts = NewArtifactService(s.params)
	s.service = NewInvoiceService(s.params, NewNumberingService(s.params), s.artifacts)
}

func aiFields() *invoice.ExtractedFields {
	return &invoice.ExtractedFields{
		ClientName:         "Acme Corp",
		ServiceDescription: "Website redesign",
		BaseAmount:         "5000",
		GSTPercentage:      "18",
		DueDate:            "2026-11-30",
		Source:             invoice.ExtractionSourceAI,
	}
}

func (s *serviceSuite) expectExtraction(fields *invoice.ExtractedFields, err error) {
	s.GetExtractor().On("Extract", mock.Anything, mock.Anything).Return(fields, err)
}

func (s *serviceSuite) counter() int64 {
	current, err := s.GetStores().SettingsRepo.Get(s.GetContext())
	s.Require().NoError(err)
	return current.NextInvoiceNumber
}

func (s *serviceSuite) generate(prompt string) (*dto.InvoiceResponse, error) {
	return s.service.GenerateInvoice(s.GetContext(), dto.GenerateInvoiceRequest{Prompt: prompt})
}

