package cache

import (
	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/logger"
)

// Initialize builds the process wide cache
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache", "enabled", cfg.Cache.Enabled)
	return NewInMemoryCache(cfg)
}
