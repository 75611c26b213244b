package validator

import (
	"testing"

	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Prompt string `json:"prompt" validate:"required"`
}

func TestValidateRequest(t *testing.T) {
	NewValidator()

	assert.NoError(t, ValidateRequest(&sample{Prompt: "bill acme"}))

	err := ValidateRequest(&sample{})
	assert.True(t, ierr.IsValidation(err))
	assert.Contains(t, err.Error(), "prompt")
}
