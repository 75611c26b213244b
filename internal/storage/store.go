package storage

import (
	"context"
	"path"
	"strings"

	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/types"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
)

// DocumentStore keeps rendered invoices and the company logo. Keys are
// slash separated and relative, e.g. "invoices/inv_01H.pdf".
type DocumentStore interface {
	// Put stores data under key, replacing any previous object
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the object bytes or an ierr.ErrNotFound error
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)

	// CanPresign reports whether PresignedURL is supported by the backend
	CanPresign() bool

	// PresignedURL returns a time limited download URL for key
	PresignedURL(ctx context.Context, key string) (string, error)
}

// InvoiceKey is where the rendered document of an invoice lives
func InvoiceKey(invoiceID string) string {
	return "invoices/" + invoiceID + ".pdf"
}

// NewLogoKey returns a fresh key for an uploaded logo with the given extension
func NewLogoKey(ext string) string {
	return "logos/logo-" + types.GenerateUUID() + "." + strings.TrimPrefix(ext, ".")
}

// validateKey rejects keys that could escape the store root
func validateKey(key string) error {
	clean := path.Clean(key)
	if key == "" || clean != key || path.IsAbs(key) || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return ierr.NewErrorf("invalid document key %q", key).
			WithHint("Invalid document key").
			Mark(ierr.ErrValidation)
	}
	return nil
}
