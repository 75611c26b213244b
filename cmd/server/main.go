package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/flexprice/invoicegen/internal/api"
	v1 "github.com/flexprice/invoicegen/internal/api/v1"
	"github.com/flexprice/invoicegen/internal/cache"
	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/extraction"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/pdf"
	"github.com/flexprice/invoicegen/internal/repository"
	"github.com/flexprice/invoicegen/internal/sentry"
	"github.com/flexprice/invoicegen/internal/service"
	"github.com/flexprice/invoicegen/internal/storage"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/flexprice/invoicegen/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		// Validator
		fx.Invoke(validator.NewValidator),

		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Repositories
			repository.NewRepositories,

			// Documents
			storage.NewDocumentStore,
			pdf.NewGenerator,

			// Language model
			extraction.NewExtractor,
		),
		// Monitoring
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewNumberingService,
			service.NewArtifactService,
			service.NewInvoiceService,
			service.NewSettingsService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	artifactService service.ArtifactService,
	settingsService service.SettingsService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Invoice:  v1.NewInvoiceHandler(invoiceService, artifactService, logger),
		Settings: v1.NewSettingsHandler(settingsService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	artifactService service.ArtifactService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	// registered first so it runs after the server stopped taking requests
	drainArtifacts(lc, artifactService, log)

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(lc, r, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startAWSLambdaAPI(lc fx.Lifecycle, r *gin.Engine, log *logger.Logger) {
	ginLambda := ginadapter.New(r)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting lambda handler...")
			go lambda.Start(ginLambda.ProxyWithContext)
			return nil
		},
	})
}

func drainArtifacts(lc fx.Lifecycle, artifactService service.ArtifactService, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Waiting for pending invoice documents...")
			return artifactService.Shutdown(ctx)
		},
	})
}
