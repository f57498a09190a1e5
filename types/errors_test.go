package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestBurnError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BurnError
		expected string
	}{
		{
			name:     "simple error",
			err:      NewBurnError(ErrCodeEmptyFieldSet, "no fields provided"),
			expected: "[EMPTY_FIELD_SET] no fields provided",
		},
		{
			name:     "error with cause",
			err:      WrapError(ErrCodeDocumentLoad, "failed to parse document", fmt.Errorf("startxref not found")),
			expected: "[DOCUMENT_LOAD] failed to parse document: startxref not found",
		},
		{
			name:     "formatted error",
			err:      NewBurnErrorf(ErrCodeInvalidInput, "page %d is invalid", 42),
			expected: "[INVALID_INPUT] page 42 is invalid",
		},
		{
			name:     "field error",
			err:      NewBurnError(ErrCodeImageDecode, "unsupported payload").ForField(&Field{ID: "sig-1", Type: FieldSignature}),
			expected: "[IMAGE_DECODE] field sig-1 (signature): unsupported payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBurnError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := WrapError(ErrCodeWriteError, "serialization failed", cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("errors.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestBurnError_Is(t *testing.T) {
	err := NewBurnError(ErrCodeImageDecode, "bad png")

	if !errors.Is(err, ErrImageDecode) {
		t.Error("errors.Is should match ErrImageDecode sentinel")
	}
	if errors.Is(err, ErrDocumentLoad) {
		t.Error("errors.Is should not match ErrDocumentLoad sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrImageDecode) {
		t.Error("wrapped error should match ErrImageDecode sentinel")
	}
}

func TestBurnError_WithContext(t *testing.T) {
	err := NewBurnError(ErrCodeDocumentLoad, "bad xref").
		WithContext("offset", 1024).
		WithContext("revision", 2)

	if err.Context["offset"] != 1024 {
		t.Errorf("Context[offset] = %v, want 1024", err.Context["offset"])
	}
	if err.Context["revision"] != 2 {
		t.Errorf("Context[revision] = %v, want 2", err.Context["revision"])
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("burn: %w", NewBurnError(ErrCodeFontError, "bad font"))

	code, ok := CodeOf(wrapped)
	if !ok || code != ErrCodeFontError {
		t.Errorf("CodeOf() = %q, %v; want FONT_ERROR, true", code, ok)
	}

	if _, ok := CodeOf(errors.New("plain")); ok {
		t.Error("CodeOf should not find a code in a plain error")
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsInputError(NewBurnError(ErrCodeEmptyFieldSet, "")) {
		t.Error("EMPTY_FIELD_SET should be an input error")
	}
	if IsInputError(NewBurnError(ErrCodeWriteError, "")) {
		t.Error("WRITE_ERROR should not be an input error")
	}

	fieldErr := NewBurnError(ErrCodeImageDecode, "").ForField(&Field{ID: "a", Type: FieldImage})
	if !IsFieldError(fieldErr) {
		t.Error("expected field error")
	}
	if IsFieldError(NewBurnError(ErrCodeDocumentLoad, "")) {
		t.Error("document errors are not field errors")
	}
}
