package types

import (
	"errors"
	"fmt"
)

// BurnErrorCode represents categorized error codes for burn operations
type BurnErrorCode string

const (
	// Input errors
	ErrCodeDocumentLoad  BurnErrorCode = "DOCUMENT_LOAD"
	ErrCodeEmptyFieldSet BurnErrorCode = "EMPTY_FIELD_SET"
	ErrCodeInvalidInput  BurnErrorCode = "INVALID_INPUT"

	// Per-field errors
	ErrCodeImageDecode     BurnErrorCode = "IMAGE_DECODE"
	ErrCodeFontError       BurnErrorCode = "FONT_ERROR"
	ErrCodeFieldProjection BurnErrorCode = "FIELD_PROJECTION"

	// Output errors
	ErrCodeWriteError       BurnErrorCode = "WRITE_ERROR"
	ErrCodeAuditPersistence BurnErrorCode = "AUDIT_PERSISTENCE"
)

// BurnError is a structured error type for burn operations.
// FieldID and FieldType are set for errors raised while drawing a single field.
type BurnError struct {
	Code      BurnErrorCode
	Message   string
	Cause     error
	FieldID   string
	FieldType FieldType
	Context   map[string]any
}

// Error implements the error interface
func (e *BurnError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.FieldID != "" {
		msg = fmt.Sprintf("[%s] field %s (%s): %s", e.Code, e.FieldID, e.FieldType, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *BurnError) Unwrap() error {
	return e.Cause
}

// Is matches a target BurnError by code
func (e *BurnError) Is(target error) bool {
	if t, ok := target.(*BurnError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error and returns the same error for chaining
func (e *BurnError) WithContext(key string, value any) *BurnError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ForField attaches the failing field's identity
func (e *BurnError) ForField(f *Field) *BurnError {
	if f != nil {
		e.FieldID = f.ID
		e.FieldType = f.Type
	}
	return e
}

// NewBurnError creates a new BurnError with the given code and message
func NewBurnError(code BurnErrorCode, message string) *BurnError {
	return &BurnError{Code: code, Message: message}
}

// NewBurnErrorf creates a new BurnError with a formatted message
func NewBurnErrorf(code BurnErrorCode, format string, args ...any) *BurnError {
	return &BurnError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an existing error with a BurnError
func WrapError(code BurnErrorCode, message string, cause error) *BurnError {
	return &BurnError{Code: code, Message: message, Cause: cause}
}

// WrapErrorf wraps an existing error with a BurnError and formatted message
func WrapErrorf(code BurnErrorCode, cause error, format string, args ...any) *BurnError {
	return &BurnError{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel errors for use with errors.Is()
var (
	ErrDocumentLoad     = &BurnError{Code: ErrCodeDocumentLoad}
	ErrEmptyFieldSet    = &BurnError{Code: ErrCodeEmptyFieldSet}
	ErrInvalidInput     = &BurnError{Code: ErrCodeInvalidInput}
	ErrImageDecode      = &BurnError{Code: ErrCodeImageDecode}
	ErrFontError        = &BurnError{Code: ErrCodeFontError}
	ErrFieldProjection  = &BurnError{Code: ErrCodeFieldProjection}
	ErrWriteError       = &BurnError{Code: ErrCodeWriteError}
	ErrAuditPersistence = &BurnError{Code: ErrCodeAuditPersistence}
)

// AsBurnError finds the first BurnError in err's chain
func AsBurnError(err error) (*BurnError, bool) {
	var be *BurnError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// CodeOf extracts the error code from an error chain containing a BurnError
func CodeOf(err error) (BurnErrorCode, bool) {
	if be, ok := AsBurnError(err); ok {
		return be.Code, true
	}
	return "", false
}

// IsInputError reports whether the caller supplied something unusable
func IsInputError(err error) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	switch code {
	case ErrCodeEmptyFieldSet, ErrCodeInvalidInput:
		return true
	}
	return false
}

// IsFieldError reports whether err was raised while drawing a single field
func IsFieldError(err error) bool {
	be, ok := AsBurnError(err)
	return ok && be.FieldID != ""
}
