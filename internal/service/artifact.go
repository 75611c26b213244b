package service

import (
	"context"
	"path"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	domainpdf "github.com/flexprice/invoicegen/internal/domain/pdf"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/sentry"
	"github.com/flexprice/invoicegen/internal/storage"
	"github.com/h2non/filetype"
	"github.com/sourcegraph/conc/pool"
)

// Artifact is a downloadable document. Either RedirectURL or Data is set.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
	RedirectURL string
}

// IsRedirect reports whether the caller should be sent to RedirectURL
func (a *Artifact) IsRedirect() bool {
	return a.RedirectURL != ""
}

// ArtifactService renders, stores and serves invoice documents. Production is
// best-effort: it never fails the caller and never holds anything the
// numbering or persistence path needs.
type ArtifactService interface {
	// Produce renders and stores the document of a persisted invoice.
	// Failures are logged and reported, never returned.
	Produce(ctx context.Context, inv *invoice.Invoice)

	// GetInvoiceArtifact returns the stored document, regenerating it when
	// it is missing
	GetInvoiceArtifact(ctx context.Context, invoiceID string) (*Artifact, error)

	// Shutdown waits for queued productions to finish
	Shutdown(ctx context.Context) error
}

type artifactService struct {
	ServiceParams

	mu     sync.RWMutex
	pool   *pool.Pool
	closed bool
}

func NewArtifactService(params ServiceParams) ArtifactService {
	s := &artifactService{ServiceParams: params}
	if params.Config.Artifacts.Async {
		size := params.Config.Artifacts.PoolSize
		if size < 1 {
			size = 1
		}
		s.pool = pool.New().WithMaxGoroutines(size)
	}
	return s
}

func (s *artifactService) Produce(ctx context.Context, inv *invoice.Invoice) {
	s.dispatch(ctx, "produce", inv, func(ctx context.Context) error {
		data, err := s.render(ctx, inv)
		if err != nil {
			return err
		}
		return s.store(ctx, storage.InvoiceKey(inv.ID), data)
	})
}

// dispatch runs task detached from the caller's cancellation, bounded by the
// artifact timeout, on the pool when async production is enabled.
func (s *artifactService) dispatch(ctx context.Context, op string, inv *invoice.Invoice, task func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	run := func() {
		ctx, cancel := context.WithTimeout(ctx, s.Config.Artifacts.Timeout)
		defer cancel()

		span, ctx := s.Sentry.StartSpan(ctx, "artifact."+op, "invoice document "+op, map[string]interface{}{
			"invoice_id": inv.ID,
		})
		err := runRecovered(ctx, task)
		sentry.FinishSpan(span, err)

		if err != nil {
			s.Logger.Errorw("failed to store invoice document",
				"operation", op,
				"invoice_id", inv.ID,
				"invoice_number", inv.InvoiceNumber,
				"error", err,
			)
			s.Sentry.CaptureWithTags(ctx, err, map[string]string{
				"invoice_id":     inv.ID,
				"invoice_number": inv.InvoiceNumber,
				"operation":      "artifact." + op,
			})
			return
		}
		s.Logger.Debugw("stored invoice document", "operation", op, "invoice_id", inv.ID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil || s.closed {
		run()
		return
	}
	s.pool.Go(run)
}

// runRecovered turns a panic in task into an artifact error so it takes the
// same logging path as any other failure and never reaches the caller.
func runRecovered(ctx context.Context, task func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ierr.NewErrorf("invoice document task panicked: %v", r).
				WithHint("Failed to produce the invoice document").
				Mark(ierr.ErrArtifact)
		}
	}()
	return task(ctx)
}

func (s *artifactService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.pool == nil {
		s.closed = true
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	p := s.pool
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ierr.WithError(ctx.Err()).
			WithHint("timed out waiting for invoice documents").
			Mark(ierr.ErrArtifact)
	}
}

func (s *artifactService) GetInvoiceArtifact(ctx context.Context, invoiceID string) (*Artifact, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	key := storage.InvoiceKey(inv.ID)
	artifact := &Artifact{
		FileName:    inv.ArtifactName(),
		ContentType: storage.ContentTypePDF,
	}

	exists, err := s.DocumentStore.Exists(ctx, key)
	if err != nil {
		s.Logger.Warnw("failed to look up stored invoice document, regenerating",
			"invoice_id", inv.ID, "error", err)
	}

	if exists {
		if s.Config.Artifacts.Redirect && s.DocumentStore.CanPresign() {
			url, err := s.DocumentStore.PresignedURL(ctx, key)
			if err == nil {
				artifact.RedirectURL = url
				return artifact, nil
			}
			s.Logger.Warnw("failed to presign invoice document", "invoice_id", inv.ID, "error", err)
		}

		data, err := s.DocumentStore.Get(ctx, key)
		if err == nil {
			artifact.Data = data
			return artifact, nil
		}
		s.Logger.Warnw("failed to read stored invoice document, regenerating",
			"invoice_id", inv.ID, "error", err)
	}

	data, err := s.render(ctx, inv)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to generate invoice document").
			WithReportableDetails(map[string]any{
				"invoiceId": inv.ID,
			}).
			Mark(ierr.ErrArtifact)
	}

	s.dispatch(ctx, "restore", inv, func(ctx context.Context) error {
		return s.store(ctx, key, data)
	})

	artifact.Data = data
	return artifact, nil
}

// render builds the document from the persisted invoice and the current
// company profile. It reads no clock, so the same inputs give the same bytes.
func (s *artifactService) render(ctx context.Context, inv *invoice.Invoice) ([]byte, error) {
	profile, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	data := domainpdf.NewInvoiceData(inv, profile)
	if profile.LogoPath != "" {
		data.Logo, data.LogoType = s.loadLogo(ctx, profile.LogoPath)
	}

	return s.PDFGenerator.RenderInvoicePdf(ctx, data)
}

// loadLogo returns the logo and its gofpdf image type. Any failure yields no
// logo so rendering can go on without it.
func (s *artifactService) loadLogo(ctx context.Context, key string) ([]byte, string) {
	logo, err := s.DocumentStore.Get(ctx, key)
	if err != nil {
		s.Logger.Warnw("failed to load company logo", "logo_path", key, "error", err)
		return nil, ""
	}

	kind, err := filetype.Match(logo)
	if err != nil {
		return nil, ""
	}
	switch kind.Extension {
	case "png":
		return logo, "PNG"
	case "jpg":
		return logo, "JPG"
	default:
		s.Logger.Warnw("unsupported company logo type", "logo_path", key, "type", kind.MIME.Value)
		return nil, ""
	}
}

func (s *artifactService) store(ctx context.Context, key string, data []byte) error {
	policy := backoff.NewExponentialBackOff()
	if s.Config.Artifacts.RetryInterval > 0 {
		policy.InitialInterval = s.Config.Artifacts.RetryInterval
	}
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, s.Config.Artifacts.MaxRetries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := s.DocumentStore.Put(ctx, key, data, contentTypeFor(key))
		if ierr.IsValidation(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to store document after %d attempts", attempt).
			WithReportableDetails(map[string]any{
				"key": key,
			}).
			Mark(ierr.ErrArtifact)
	}
	return nil
}

func contentTypeFor(key string) string {
	switch path.Ext(key) {
	case ".pdf":
		return storage.ContentTypePDF
	case ".png":
		return storage.ContentTypePNG
	case ".jpg", ".jpeg":
		return storage.ContentTypeJPEG
	default:
		return "application/octet-stream"
	}
}

