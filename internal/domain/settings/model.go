package settings

import (
	"time"
)

const (
	DefaultCompanyName    = "My Company Name"
	DefaultCompanyAddress = "123 Business St, Tech City"
	DefaultPrefix         = "INV-"
)

// Settings is the single company profile record. It also owns the invoice
// number counter: NextInvoiceNumber is the value the next reservation hands out.
type Settings struct {
	CompanyName       string    `json:"companyName"`
	CompanyAddress    string    `json:"companyAddress"`
	CompanyTaxID      string    `json:"companyTaxId"`
	Prefix            string    `json:"prefix"`
	NextInvoiceNumber int64     `json:"nextInvoiceNumber"`
	LogoPath          string    `json:"logoPath"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Default returns the record created on first access
func Default(now time.Time) *Settings {
	return &Settings{
		CompanyName:       DefaultCompanyName,
		CompanyAddress:    DefaultCompanyAddress,
		Prefix:            DefaultPrefix,
		NextInvoiceNumber: 1,
		UpdatedAt:         now.UTC(),
	}
}

// Update is a partial change to the profile. Nil and empty values are ignored
// so a form submitting blank fields never wipes stored values.
type Update struct {
	CompanyName       *string
	CompanyAddress    *string
	CompanyTaxID      *string
	Prefix            *string
	NextInvoiceNumber *int64
	LogoPath          *string
}

// Apply copies the non-empty fields of u onto s and reports whether anything changed
func (u Update) Apply(s *Settings) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src != nil && *src != "" && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	set(&s.CompanyName, u.CompanyName)
	set(&s.CompanyAddress, u.CompanyAddress)
	set(&s.CompanyTaxID, u.CompanyTaxID)
	set(&s.Prefix, u.Prefix)
	set(&s.LogoPath, u.LogoPath)
	if u.NextInvoiceNumber != nil && *u.NextInvoiceNumber > 0 && s.NextInvoiceNumber != *u.NextInvoiceNumber {
		s.NextInvoiceNumber = *u.NextInvoiceNumber
		changed = true
	}
	return changed
}

// IsEmpty reports whether the update carries no applicable field
func (u Update) IsEmpty() bool {
	probe := &Settings{}
	return !u.Apply(probe)
}

// Reservation is the outcome of one atomic counter step: Value was handed out
// and the stored counter now holds Value+1.
type Reservation struct {
	Prefix string
	Value  int64
}

// EffectiveCounter treats a missing or non-positive counter as 1
func EffectiveCounter(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}
