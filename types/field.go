package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FieldType identifies how a field is drawn
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldDate      FieldType = "date"
	FieldRadio     FieldType = "radio"
	FieldImage     FieldType = "image"
	FieldSignature FieldType = "signature"
)

// Valid reports whether t is one of the known field types
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldDate, FieldRadio, FieldImage, FieldSignature:
		return true
	}
	return false
}

// PlaceholderText is the editor's initial value for a new text field. It is never burned.
const PlaceholderText = "Text Field"

// NormalizedRect is a rectangle expressed as fractions of the rendered page
// width and height, with a top-left origin. Values are stored unclamped.
type NormalizedRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DefaultRect returns the rectangle the editor assigns to a newly inserted field
func DefaultRect(t FieldType) NormalizedRect {
	switch t {
	case FieldText:
		return NormalizedRect{X: 0.4, Y: 0.4, W: 0.15, H: 0.03}
	case FieldDate:
		return NormalizedRect{X: 0.4, Y: 0.4, W: 0.12, H: 0.03}
	case FieldRadio:
		return NormalizedRect{X: 0.4, Y: 0.4, W: 0.04, H: 0.04}
	case FieldImage:
		return NormalizedRect{X: 0.35, Y: 0.4, W: 0.15, H: 0.15}
	case FieldSignature:
		return NormalizedRect{X: 0.35, Y: 0.4, W: 0.3, H: 0.1}
	}
	return NormalizedRect{X: 0.4, Y: 0.4, W: 0.2, H: 0.05}
}

// Attributes is the closed set of per-type style records.
// Implemented by *TextAttributes, *DateAttributes, *RadioAttributes,
// *ImageAttributes and *SignatureAttributes.
type Attributes interface {
	fieldType() FieldType
}

// TextStyle is shared by text and date fields
type TextStyle struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Color      string  `json:"color,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Underline  bool    `json:"underline,omitempty"`
}

// Default text style values
const (
	DefaultFontFamily = "Inter"
	DefaultFontSize   = 14.0
	DefaultColor      = "#000000"
)

func (s *TextStyle) applyDefaults() {
	if s.FontFamily == "" {
		s.FontFamily = DefaultFontFamily
	}
	if s.FontSize <= 0 {
		s.FontSize = DefaultFontSize
	}
	if s.Color == "" {
		s.Color = DefaultColor
	}
}

type TextAttributes struct {
	TextStyle
}

func (*TextAttributes) fieldType() FieldType { return FieldText }

// Date display formats
const (
	DateFormatUS   = "MM/DD/YYYY"
	DateFormatEU   = "DD/MM/YYYY"
	DateFormatISO  = "YYYY-MM-DD"
	DateFormatLong = "MMM DD, YYYY"
)

type DateAttributes struct {
	TextStyle
	// Format re-renders ISO input dates; empty burns the value verbatim
	Format string `json:"format,omitempty"`
}

func (*DateAttributes) fieldType() FieldType { return FieldDate }

// FormatValue renders value in the configured format when it parses as an
// ISO date or a US date. Anything else is returned unchanged.
func (a *DateAttributes) FormatValue(value string) string {
	layout := ""
	switch a.Format {
	case DateFormatUS:
		layout = "01/02/2006"
	case DateFormatEU:
		layout = "02/01/2006"
	case DateFormatISO:
		layout = "2006-01-02"
	case DateFormatLong:
		layout = "Jan 02, 2006"
	default:
		return value
	}

	for _, in := range []string{"2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(in, value); err == nil {
			return t.Format(layout)
		}
	}
	return value
}

type RadioAttributes struct {
	DefaultChecked bool `json:"defaultChecked,omitempty"`
}

func (*RadioAttributes) fieldType() FieldType { return FieldRadio }

// ImageFitContain is the only supported image fit
const ImageFitContain = "contain"

type ImageAttributes struct {
	Fit string `json:"fit,omitempty"`
}

func (*ImageAttributes) fieldType() FieldType { return FieldImage }

type SignatureAttributes struct {
	PenColor     string  `json:"penColor,omitempty"`
	PenThickness float64 `json:"penThickness,omitempty"`
}

func (*SignatureAttributes) fieldType() FieldType { return FieldSignature }

// DefaultAttributes returns the attribute record with every default applied
func DefaultAttributes(t FieldType) Attributes {
	switch t {
	case FieldText:
		a := &TextAttributes{}
		a.applyDefaults()
		return a
	case FieldDate:
		a := &DateAttributes{}
		a.applyDefaults()
		return a
	case FieldRadio:
		return &RadioAttributes{}
	case FieldImage:
		return &ImageAttributes{Fit: ImageFitContain}
	case FieldSignature:
		return &SignatureAttributes{PenColor: DefaultColor, PenThickness: 2}
	}
	return nil
}

// Field is a typed annotation placed on a page
type Field struct {
	ID         string
	Type       FieldType
	PageNumber int
	Rect       NormalizedRect
	Value      string
	Attributes Attributes
}

// Label identifies the field in errors and logs, falling back to its
// position in the request when no id was supplied.
func (f *Field) Label(index int) string {
	if f.ID != "" {
		return f.ID
	}
	return "#" + strconv.Itoa(index+1)
}

// TextAttrs returns the text style for text fields, defaults otherwise
func (f *Field) TextAttrs() *TextAttributes {
	if a, ok := f.Attributes.(*TextAttributes); ok {
		return a
	}
	return DefaultAttributes(FieldText).(*TextAttributes)
}

// DateAttrs returns the date style for date fields, defaults otherwise
func (f *Field) DateAttrs() *DateAttributes {
	if a, ok := f.Attributes.(*DateAttributes); ok {
		return a
	}
	return DefaultAttributes(FieldDate).(*DateAttributes)
}

type fieldJSON struct {
	ID         json.RawMessage `json:"id,omitempty"`
	Type       FieldType       `json:"type"`
	PageNumber int             `json:"pageNumber"`
	Rect       NormalizedRect  `json:"rect"`
	Value      json.RawMessage `json:"value,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// UnmarshalJSON decodes the editor's field record, selecting the attribute
// struct by type. Unknown attribute keys are ignored and missing ones take defaults.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("unknown field type %q", raw.Type)
	}

	id, err := idString(raw.ID)
	if err != nil {
		return fmt.Errorf("field id: %w", err)
	}
	value, err := valueString(raw.Value)
	if err != nil {
		return fmt.Errorf("field value: %w", err)
	}

	attrs := DefaultAttributes(raw.Type)
	if len(raw.Attributes) > 0 && !bytes.Equal(bytes.TrimSpace(raw.Attributes), []byte("null")) {
		if err := json.Unmarshal(raw.Attributes, attrs); err != nil {
			return fmt.Errorf("field attributes: %w", err)
		}
		switch a := attrs.(type) {
		case *TextAttributes:
			a.applyDefaults()
		case *DateAttributes:
			a.applyDefaults()
		}
	}

	*f = Field{
		ID:         id,
		Type:       raw.Type,
		PageNumber: raw.PageNumber,
		Rect:       raw.Rect,
		Value:      value,
		Attributes: attrs,
	}
	return nil
}

// MarshalJSON encodes the field in the editor's wire shape
func (f Field) MarshalJSON() ([]byte, error) {
	out := struct {
		ID         string         `json:"id,omitempty"`
		Type       FieldType      `json:"type"`
		PageNumber int            `json:"pageNumber"`
		Rect       NormalizedRect `json:"rect"`
		Value      string         `json:"value,omitempty"`
		Attributes Attributes     `json:"attributes,omitempty"`
	}{f.ID, f.Type, f.PageNumber, f.Rect, f.Value, f.Attributes}
	return json.Marshal(out)
}

// idString accepts a JSON string, number or null
func idString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return string(raw), nil
	}
	return "", fmt.Errorf("unsupported value %s", raw)
}

// valueString accepts a JSON string or null. A radio is selected only by
// the string "true", so other JSON types are refused rather than coerced.
func valueString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] != '"' {
		return "", fmt.Errorf("must be a string, got %s", raw)
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	return v, nil
}
