package extraction

import (
	"context"

	"github.com/flexprice/invoicegen/internal/config"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/logger"
)

// Extractor turns a free-text request into structured invoice fields. It
// returns either complete fields or an error marked ierr.ErrExtraction,
// never a partially parsed result.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (*invoice.ExtractedFields, error)
}

// NewExtractor builds the OpenAI compatible extractor wrapped in the
// configured failure policy
func NewExtractor(cfg *config.Configuration, log *logger.Logger) Extractor {
	return NewPolicyExtractor(NewOpenAIExtractor(cfg, log), cfg.Extraction.FailurePolicy, log)
}
