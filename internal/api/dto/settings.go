package dto

import (
	"strings"

	"github.com/flexprice/invoicegen/internal/domain/settings"
	"github.com/flexprice/invoicegen/internal/validator"
)

// SettingsResponse represents the company profile in API responses
type SettingsResponse struct {
	*settings.Settings
}

func NewSettingsResponse(s *settings.Settings) *SettingsResponse {
	return &SettingsResponse{Settings: s}
}

// UpdateSettingsRequest is a partial update. Missing, blank and zero fields
// leave the stored value unchanged.
type UpdateSettingsRequest struct {
	CompanyName       *string `json:"companyName,omitempty" validate:"omitempty,max=255"`
	CompanyAddress    *string `json:"companyAddress,omitempty" validate:"omitempty,max=1000"`
	CompanyTaxID      *string `json:"companyTaxId,omitempty" validate:"omitempty,max=64"`
	Prefix            *string `json:"prefix,omitempty" validate:"omitempty,max=32"`
	NextInvoiceNumber *int64  `json:"nextInvoiceNumber,omitempty" validate:"omitempty,gte=0"`
}

func (r *UpdateSettingsRequest) Validate() error {
	for _, field := range []*string{r.CompanyName, r.CompanyAddress, r.CompanyTaxID, r.Prefix} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	return validator.ValidateRequest(r)
}

func (r *UpdateSettingsRequest) ToUpdate() settings.Update {
	return settings.Update{
		CompanyName:       r.CompanyName,
		CompanyAddress:    r.CompanyAddress,
		CompanyTaxID:      r.CompanyTaxID,
		Prefix:            r.Prefix,
		NextInvoiceNumber: r.NextInvoiceNumber,
	}
}

// LogoUploadResponse is returned after a logo upload
type LogoUploadResponse struct {
	LogoPath string `json:"logoPath"`
}
