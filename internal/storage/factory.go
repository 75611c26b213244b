package storage

import (
	"context"

	"github.com/flexprice/invoicegen/internal/cache"
	"github.com/flexprice/invoicegen/internal/config"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/types"
)

// NewDocumentStore builds the backend selected by artifacts.backend
func NewDocumentStore(cfg *config.Configuration, c cache.Cache, log *logger.Logger) (DocumentStore, error) {
	switch cfg.Artifacts.Backend {
	case types.ArtifactBackendS3:
		awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.S3)
		if err != nil {
			return nil, ierr.WithError(err).WithHint("failed to load aws config").
				Mark(ierr.ErrHTTPClient)
		}
		log.Infow("using s3 document store", "bucket", cfg.S3.Bucket, "region", cfg.S3.Region)
		return NewS3Store(config.NewS3Client(awsCfg, cfg.S3), cfg.S3, cfg.Artifacts.PresignExpiry, c, log), nil

	case types.ArtifactBackendLocal:
		log.Infow("using local document store", "dir", cfg.Artifacts.LocalDir)
		return NewLocalStore(cfg.Artifacts.LocalDir)

	default:
		return nil, ierr.NewErrorf("unknown artifact backend %q", cfg.Artifacts.Backend).
			Mark(ierr.ErrValidation)
	}
}
