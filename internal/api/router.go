package api

import (
	v1 "github.com/flexprice/invoicegen/internal/api/v1"
	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/rest/middleware"
	"github.com/flexprice/invoicegen/internal/service"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Invoice  *v1.InvoiceHandler
	Settings *v1.SettingsHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	// multipart bodies beyond the logo limit are spilled to disk by gin, keep
	// the in-memory share at the limit plus room for the form envelope
	router.MaxMultipartMemory = service.MaxLogoSize + 1<<20

	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api")

	invoices := api.Group("/invoices")
	{
		invoices.POST("/generate", handlers.Invoice.GenerateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.GET("/:id/download", handlers.Invoice.DownloadInvoice)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", handlers.Settings.GetSettings)
		settings.PUT("", handlers.Settings.UpdateSettings)
		settings.POST("/logo", handlers.Settings.UploadLogo)
		settings.GET("/logo", handlers.Settings.GetLogo)
	}

	logger.Debugw("router initialized", "routes", len(router.Routes()))
	return router
}
