// Package font resolves field text styles to PDF fonts and measures text
// for line wrapping. Faces are either standard 14 Type1 fonts, which need no
// embedding, or TrueType fonts embedded whole.
package font

import (
	"strings"

	"github.com/benedoc-inc/pdfburn/core/write"
)

// Style selects a face
type Style struct {
	Family string
	Bold   bool
	Italic bool
}

// Face is a font that can encode, measure and embed text
type Face interface {
	// Name is the PostScript name, e.g. "Helvetica-Bold"
	Name() string
	// Encode converts text to single-byte WinAnsi codes. Runes without a
	// code become '?'; the count of replaced runes is returned.
	Encode(text string) ([]byte, int)
	// Width returns the advance of encoded text at size, in points
	Width(encoded []byte, size float64) float64
	// Embed writes the font objects and returns the font dictionary's number
	Embed(w write.ObjectWriter) int
}

// Resolution is the outcome of resolving a style
type Resolution struct {
	Face Face
	// Substituted is set when the requested family or face was not
	// available and a fallback was used
	Substituted bool
}

type family struct {
	regular, bold, italic, boldItalic Face
}

// pick returns the face for bold/italic, degrading bold-italic to bold,
// then italic, then regular
func (f *family) pick(bold, italic bool) (Face, bool) {
	switch {
	case bold && italic && f.boldItalic != nil:
		return f.boldItalic, false
	case bold && f.bold != nil:
		return f.bold, italic
	case italic && f.italic != nil:
		return f.italic, bold
	default:
		return f.regular, bold || italic
	}
}

func normalizeFamily(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
