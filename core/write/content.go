package write

import (
	"bytes"
	"strings"
)

// bezierCircle is the control point distance for a quarter circle of radius 1
const bezierCircle = 0.5522847498

// ContentStream builds PDF page content streams
type ContentStream struct {
	buf bytes.Buffer
}

// NewContentStream creates a new content stream builder
func NewContentStream() *ContentStream {
	return &ContentStream{}
}

// Bytes returns the content stream data
func (cs *ContentStream) Bytes() []byte {
	return cs.buf.Bytes()
}

// String returns the content stream as a string
func (cs *ContentStream) String() string {
	return cs.buf.String()
}

// Len returns the number of bytes written so far
func (cs *ContentStream) Len() int {
	return cs.buf.Len()
}

func (cs *ContentStream) op(operator string, operands ...float64) *ContentStream {
	for _, v := range operands {
		cs.buf.WriteString(FormatNumber(v))
		cs.buf.WriteByte(' ')
	}
	cs.buf.WriteString(operator)
	cs.buf.WriteByte('\n')
	return cs
}

// --- Graphics State Operations ---

// SaveState saves the current graphics state (q operator)
func (cs *ContentStream) SaveState() *ContentStream {
	return cs.op("q")
}

// RestoreState restores the previous graphics state (Q operator)
func (cs *ContentStream) RestoreState() *ContentStream {
	return cs.op("Q")
}

// SetMatrix sets the current transformation matrix (cm operator)
func (cs *ContentStream) SetMatrix(a, b, c, d, e, f float64) *ContentStream {
	return cs.op("cm", a, b, c, d, e, f)
}

// --- Color Operations ---

// SetFillColorRGB sets the fill color (rg operator)
func (cs *ContentStream) SetFillColorRGB(r, g, b float64) *ContentStream {
	return cs.op("rg", r, g, b)
}

// SetStrokeColorRGB sets the stroke color (RG operator)
func (cs *ContentStream) SetStrokeColorRGB(r, g, b float64) *ContentStream {
	return cs.op("RG", r, g, b)
}

// SetFillColorGray sets the fill color to grayscale (g operator)
func (cs *ContentStream) SetFillColorGray(gray float64) *ContentStream {
	return cs.op("g", gray)
}

// --- Path Operations ---

// MoveTo starts a new subpath (m operator)
func (cs *ContentStream) MoveTo(x, y float64) *ContentStream {
	return cs.op("m", x, y)
}

// LineTo appends a line segment (l operator)
func (cs *ContentStream) LineTo(x, y float64) *ContentStream {
	return cs.op("l", x, y)
}

// CurveTo appends a cubic Bézier segment (c operator)
func (cs *ContentStream) CurveTo(x1, y1, x2, y2, x3, y3 float64) *ContentStream {
	return cs.op("c", x1, y1, x2, y2, x3, y3)
}

// Rectangle appends a rectangle (re operator)
func (cs *ContentStream) Rectangle(x, y, width, height float64) *ContentStream {
	return cs.op("re", x, y, width, height)
}

// Circle appends a closed circle built from four Bézier arcs
func (cs *ContentStream) Circle(cx, cy, r float64) *ContentStream {
	k := bezierCircle * r
	cs.MoveTo(cx+r, cy)
	cs.CurveTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	cs.CurveTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	cs.CurveTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	cs.CurveTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	return cs.ClosePath()
}

// Stroke strokes the current path (S operator)
func (cs *ContentStream) Stroke() *ContentStream {
	return cs.op("S")
}

// Fill fills the current path (f operator)
func (cs *ContentStream) Fill() *ContentStream {
	return cs.op("f")
}

// ClosePath closes the current subpath (h operator)
func (cs *ContentStream) ClosePath() *ContentStream {
	return cs.op("h")
}

// SetLineWidth sets the line width (w operator)
func (cs *ContentStream) SetLineWidth(width float64) *ContentStream {
	return cs.op("w", width)
}

// Line strokes a single segment from (x1, y1) to (x2, y2)
func (cs *ContentStream) Line(x1, y1, x2, y2 float64) *ContentStream {
	return cs.MoveTo(x1, y1).LineTo(x2, y2).Stroke()
}

// --- Text Operations ---

// BeginText starts a text object (BT operator)
func (cs *ContentStream) BeginText() *ContentStream {
	return cs.op("BT")
}

// EndText ends a text object (ET operator)
func (cs *ContentStream) EndText() *ContentStream {
	return cs.op("ET")
}

// SetFont sets the font and size (Tf operator)
// fontName should be a resource name like "/F1"
func (cs *ContentStream) SetFont(fontName string, size float64) *ContentStream {
	cs.buf.WriteString(fontName + " ")
	return cs.op("Tf", size)
}

// SetTextPosition sets the text position (Td operator)
func (cs *ContentStream) SetTextPosition(x, y float64) *ContentStream {
	return cs.op("Td", x, y)
}

// SetTextMatrix sets the text matrix (Tm operator)
func (cs *ContentStream) SetTextMatrix(a, b, c, d, e, f float64) *ContentStream {
	return cs.op("Tm", a, b, c, d, e, f)
}

// ShowText displays an ASCII string (Tj operator)
func (cs *ContentStream) ShowText(text string) *ContentStream {
	return cs.ShowTextBytes([]byte(text))
}

// ShowTextBytes displays already-encoded text (Tj operator)
func (cs *ContentStream) ShowTextBytes(text []byte) *ContentStream {
	cs.buf.WriteString("(" + EscapeString(text) + ") Tj\n")
	return cs
}

// --- Image Operations ---

// DrawImage draws an image XObject (Do operator)
// imageName should be a resource name like "/Im1"
func (cs *ContentStream) DrawImage(imageName string) *ContentStream {
	cs.buf.WriteString(imageName + " ")
	return cs.op("Do")
}

// DrawImageAt draws an image at a specific position and size
func (cs *ContentStream) DrawImageAt(imageName string, x, y, width, height float64) *ContentStream {
	cs.SaveState()
	cs.SetMatrix(width, 0, 0, height, x, y)
	cs.DrawImage(imageName)
	return cs.RestoreState()
}

// --- Raw Operations ---

// Raw writes raw content stream data
func (cs *ContentStream) Raw(data string) *ContentStream {
	cs.buf.WriteString(data)
	if len(data) > 0 && !strings.HasSuffix(data, "\n") {
		cs.buf.WriteByte('\n')
	}
	return cs
}
