package testutil

import (
	"context"
	"time"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/pdf"
	"github.com/flexprice/invoicegen/internal/repository/memory"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/flexprice/invoicegen/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory backends used by service tests
type Stores struct {
	InvoiceRepo   *FailingInvoiceStore
	SettingsRepo  *FailingSettingsStore
	DocumentStore *InMemoryDocumentStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	stores       Stores
	logger       *logger.Logger
	config       *config.Configuration
	now          time.Time
	pdfGenerator pdf.Generator
	extractor    *MockExtractor
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Storage.Driver = types.StorageDriverMemory
	cfg.Artifacts.MaxRetries = 2
	cfg.Artifacts.RetryInterval = time.Millisecond
	cfg.Artifacts.Timeout = 5 * time.Second
	s.config = cfg

	s.logger = logger.NewNopLogger()
	s.pdfGenerator = pdf.NewGenerator(s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Now().UTC()
	s.extractor = new(MockExtractor)
	s.stores = Stores{
		InvoiceRepo:   &FailingInvoiceStore{InvoiceStore: memory.NewInvoiceStore()},
		SettingsRepo:  &FailingSettingsStore{SettingsStore: memory.NewSettingsStore()},
		DocumentStore: NewInMemoryDocumentStore(),
	}
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.InvoiceRepo.Clear()
	s.stores.SettingsRepo.Clear()
	s.stores.DocumentStore.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPDFGenerator returns the test PDF generator
func (s *BaseServiceTestSuite) GetPDFGenerator() pdf.Generator {
	return s.pdfGenerator
}

// GetExtractor returns the mocked extractor, fresh for every test
func (s *BaseServiceTestSuite) GetExtractor() *MockExtractor {
	return s.extractor
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
