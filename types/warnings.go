package types

import (
	"fmt"
)

// WarningLevel represents the severity of a warning
type WarningLevel string

const (
	WarningLevelInfo    WarningLevel = "info"
	WarningLevelWarning WarningLevel = "warning"
)

// Warning codes raised while burning
const (
	WarnPageClamped     = "PAGE_CLAMPED"
	WarnFieldSkipped    = "FIELD_SKIPPED"
	WarnFontSubstituted = "FONT_SUBSTITUTED"
	WarnGlyphReplaced   = "GLYPH_REPLACED"
	WarnImageDownscaled = "IMAGE_DOWNSCALED"
	WarnTextOverflow    = "TEXT_OVERFLOW"
)

// Warning represents a non-fatal adjustment made while burning a field
type Warning struct {
	Level   WarningLevel `json:"level"`
	Code    string       `json:"code"`
	FieldID string       `json:"fieldId,omitempty"`
	Message string       `json:"message"`
}

// Error implements the error interface so warnings can be logged as errors if needed
func (w *Warning) Error() string {
	if w.FieldID != "" {
		return fmt.Sprintf("[%s] %s: field %s: %s", w.Level, w.Code, w.FieldID, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Level, w.Code, w.Message)
}

// WarningCollector collects warnings during a single burn. It is not safe for concurrent use.
type WarningCollector struct {
	warnings []Warning
}

// NewWarningCollector creates an empty collector
func NewWarningCollector() *WarningCollector {
	return &WarningCollector{}
}

// Addf records a warning with a formatted message. A nil collector discards it.
func (wc *WarningCollector) Addf(level WarningLevel, code, fieldID, format string, args ...any) {
	if wc == nil {
		return
	}
	wc.warnings = append(wc.warnings, Warning{
		Level:   level,
		Code:    code,
		FieldID: fieldID,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnings returns all collected warnings in the order they were raised
func (wc *WarningCollector) Warnings() []Warning {
	if wc == nil {
		return nil
	}
	return wc.warnings
}

// ByCode returns warnings filtered by code
func (wc *WarningCollector) ByCode(code string) []Warning {
	var result []Warning
	for _, w := range wc.Warnings() {
		if w.Code == code {
			result = append(result, w)
		}
	}
	return result
}

// Count returns the number of warnings collected
func (wc *WarningCollector) Count() int {
	return len(wc.Warnings())
}
