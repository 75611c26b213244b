package service

import (
	"testing"

	"github.com/flexprice/invoicegen/internal/domain/settings"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/stretchr/testify/suite"
)

type NumberingServiceSuite struct {
	serviceSuite
	numbering NumberingService
}

func TestNumberingService(t *testing.T) {
	suite.Run(t, new(NumberingServiceSuite))
}

func (s *NumberingServiceSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.numbering = NewNumberingService(s.params)
}

func (s *NumberingServiceSuite) TestReserve_PadsToThreeDigits() {
	for _, want := range []string{"INV-001", "INV-002", "INV-003"} {
		got, err := s.numbering.ReserveInvoiceNumber(s.GetContext())
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *NumberingServiceSuite) TestReserve_NonPositiveCounterStartsAtOne() {
	s.GetStores().SettingsRepo.Seed(&settings.Settings{Prefix: "INV-", NextInvoiceNumber: 0})

	got, err := s.numbering.ReserveInvoiceNumber(s.GetContext())

	s.Require().NoError(err)
	s.Equal("INV-001", got)
	s.Equal(int64(2), s.counter())
}

func (s *NumberingServiceSuite) TestReserve_WideCounterIsNotTruncated() {
	s.GetStores().SettingsRepo.Seed(&settings.Settings{Prefix: "", NextInvoiceNumber: 12345})

	got, err := s.numbering.ReserveInvoiceNumber(s.GetContext())

	s.Require().NoError(err)
	s.Equal("12345", got)
}

func (s *NumberingServiceSuite) TestReserve_StoreFailureIsNumberingError() {
	s.GetStores().SettingsRepo.ReserveErr = ierr.NewError("locked").Mark(ierr.ErrDatabase)

	_, err := s.numbering.ReserveInvoiceNumber(s.GetContext())

	s.Require().Error(err)
	s.True(ierr.IsNumbering(err))
}
