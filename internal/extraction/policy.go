package extraction

import (
	"context"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/invoice"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/types"
)

// PolicyExtractor applies the configured failure policy around another
// extractor. With the fallback policy a failed call yields placeholder fields
// marked as such. A cancelled caller always gets the error.
type PolicyExtractor struct {
	inner  Extractor
	policy types.ExtractionFailurePolicy
	logger *logger.Logger
	now    func() time.Time
}

func NewPolicyExtractor(inner Extractor, policy types.ExtractionFailurePolicy, log *logger.Logger) *PolicyExtractor {
	return &PolicyExtractor{
		inner:  inner,
		policy: policy,
		logger: log,
		now:    time.Now,
	}
}

var _ Extractor = (*PolicyExtractor)(nil)

func (p *PolicyExtractor) Extract(ctx context.Context, prompt string) (*invoice.ExtractedFields, error) {
	fields, err := p.inner.Extract(ctx, prompt)
	if err == nil {
		return fields, nil
	}

	if !ierr.IsExtraction(err) {
		err = ierr.WithError(err).
			WithHint("Invoice extraction failed").
			Mark(ierr.ErrExtraction)
	}

	if p.policy != types.ExtractionFailurePolicyFallback || ctx.Err() != nil {
		return nil, err
	}

	p.logger.Warnw("extraction failed, using fallback invoice data", "error", err)
	fallback := invoice.FallbackFields(p.now())
	return &fallback, nil
}
