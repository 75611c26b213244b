package errors

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestMarkedKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		is     func(error) bool
		status int
	}{
		{
			name:   "database",
			err:    WithError(errors.New("connection refused")).WithHint("Failed to create invoice").Mark(ErrDatabase),
			is:     IsDatabase,
			status: http.StatusInternalServerError,
		},
		{
			name:   "validation",
			err:    NewError("prompt is required").Mark(ErrValidation),
			is:     IsValidation,
			status: http.StatusBadRequest,
		},
		{
			name:   "not found",
			err:    NewError("invoice missing").Mark(ErrNotFound),
			is:     IsNotFound,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.Equal(t, tt.status, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestIsDatabase_Unmarked(t *testing.T) {
	assert.False(t, IsDatabase(errors.New("connection refused")))
	assert.False(t, IsDatabase(NewError("duplicate").Mark(ErrDuplicateNumber)))
}
