package service

import (
	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/domain/settings"
	"github.com/flexprice/invoicegen/internal/extraction"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/pdf"
	"github.com/flexprice/invoicegen/internal/sentry"
	"github.com/flexprice/invoicegen/internal/storage"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Sentry *sentry.Service

	// Repositories
	InvoiceRepo  invoice.Repository
	SettingsRepo settings.Repository

	Extractor     extraction.Extractor
	PDFGenerator  pdf.Generator
	DocumentStore storage.DocumentStore
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	sentry *sentry.Service,
	invoiceRepo invoice.Repository,
	settingsRepo settings.Repository,
	extractor extraction.Extractor,
	pdfGenerator pdf.Generator,
	documentStore storage.DocumentStore,
) ServiceParams {
	return ServiceParams{
		Logger:        logger,
		Config:        config,
		Sentry:        sentry,
		InvoiceRepo:   invoiceRepo,
		SettingsRepo:  settingsRepo,
		Extractor:     extractor,
		PDFGenerator:  pdfGenerator,
		DocumentStore: documentStore,
	}
}
