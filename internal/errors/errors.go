package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Invoice generation failure kinds
	ErrExtraction      = new(ErrCodeExtraction, "invoice data extraction failed")
	ErrNumbering       = new(ErrCodeNumbering, "invoice number reservation failed")
	ErrDuplicateNumber = new(ErrCodeDuplicateNumber, "invoice number already issued")
	ErrArtifact        = new(ErrCodeArtifact, "invoice document unavailable")

	// statusCodes maps errors to http status codes. Order matters: the first
	// match wins, so generation kinds are checked before the generic ones
	// they are usually wrapped around.
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrExtraction, http.StatusInternalServerError},
		{ErrNumbering, http.StatusInternalServerError},
		{ErrDuplicateNumber, http.StatusInternalServerError},
		{ErrArtifact, http.StatusInternalServerError},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrHTTPClient, http.StatusInternalServerError},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"
	ErrCodeExtraction       = "extraction_error"
	ErrCodeNumbering        = "numbering_error"
	ErrCodeDuplicateNumber  = "duplicate_number_error"
	ErrCodeArtifact         = "artifact_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsExtraction checks if an error is an extraction error
func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction)
}

// IsNumbering checks if an error is a numbering error
func IsNumbering(err error) bool {
	return errors.Is(err, ErrNumbering)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsDuplicateNumber checks if an error is a duplicate invoice number error
func IsDuplicateNumber(err error) bool {
	return errors.Is(err, ErrDuplicateNumber)
}

// IsArtifact checks if an error is an artifact error
func IsArtifact(err error) bool {
	return errors.Is(err, ErrArtifact)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// KindFromErr returns the machine-readable code of the first known sentinel
// the error is marked with.
func KindFromErr(err error) string {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.err.(*InternalError).Code
		}
	}
	return ErrCodeSystemError
}
