package font

import (
	"fmt"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"

	"github.com/benedoc-inc/pdfburn/core/write"
)

// trueTypeFace is a TrueType font embedded whole as /FontFile2 with a
// WinAnsi simple-font encoding
type trueTypeFace struct {
	name        string
	data        []byte
	widths      [256]float64 // 1/1000 em
	bbox        [4]float64
	ascent      float64
	descent     float64
	capHeight   float64
	italicAngle float64
	fixedPitch  bool
}

// glyphScale measures glyphs in 1/1000 em so no unit conversion is needed
var glyphScale = fixed.I(1000)

// ParseTrueType reads a TrueType font file
func ParseTrueType(data []byte) (Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TrueType font: %w", err)
	}

	var buf sfnt.Buffer
	face := &trueTypeFace{data: data}

	face.name, err = f.Name(&buf, sfnt.NameIDPostScript)
	if err != nil || face.name == "" {
		if face.name, err = f.Name(&buf, sfnt.NameIDFull); err != nil {
			return nil, fmt.Errorf("font has no name: %w", err)
		}
	}
	face.name = pdfName(face.name)

	notdef, err := f.GlyphAdvance(&buf, 0, glyphScale, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read glyph advance: %w", err)
	}
	for code := 32; code < 256; code++ {
		r := charmap.Windows1252.DecodeByte(byte(code))
		adv := notdef
		if gi, err := f.GlyphIndex(&buf, r); err == nil && gi != 0 {
			if a, err := f.GlyphAdvance(&buf, gi, glyphScale, xfont.HintingNone); err == nil {
				adv = a
			}
		}
		face.widths[code] = float64(adv) / 64
	}

	if b, err := f.Bounds(&buf, glyphScale, xfont.HintingNone); err == nil {
		// y increases downwards in sfnt bounds
		face.bbox = [4]float64{
			float64(b.Min.X) / 64, -float64(b.Max.Y) / 64,
			float64(b.Max.X) / 64, -float64(b.Min.Y) / 64,
		}
	}
	if m, err := f.Metrics(&buf, glyphScale, xfont.HintingNone); err == nil {
		face.ascent = float64(m.Ascent) / 64
		face.descent = -float64(m.Descent) / 64
		face.capHeight = float64(m.CapHeight) / 64
	}
	if post := f.PostTable(); post != nil {
		face.italicAngle = post.ItalicAngle
		face.fixedPitch = post.IsFixedPitch
	}
	if face.capHeight == 0 {
		face.capHeight = face.ascent
	}

	return face, nil
}

// pdfName drops characters that may not appear in a PDF name
func pdfName(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("()<>[]{}/%#", r) {
			return -1
		}
		return r
	}, s)
}

func (f *trueTypeFace) Name() string { return f.name }

func (f *trueTypeFace) Encode(text string) ([]byte, int) {
	return encodeWinAnsi(text)
}

func (f *trueTypeFace) Width(encoded []byte, size float64) float64 {
	return sumWidths(&f.widths, encoded, size)
}

func (f *trueTypeFace) Embed(w write.ObjectWriter) int {
	fileNum := w.AddStreamObject(write.Dictionary{"Length1": len(f.data)}, f.data, true)

	flags := 32 // nonsymbolic
	if f.fixedPitch {
		flags |= 1
	}
	if f.italicAngle != 0 {
		flags |= 64
	}

	descNum := w.AddObject(write.FormatDictionary(write.Dictionary{
		"Type":        "/FontDescriptor",
		"FontName":    "/" + f.name,
		"Flags":       flags,
		"FontBBox":    f.bbox[:],
		"ItalicAngle": f.italicAngle,
		"Ascent":      f.ascent,
		"Descent":     f.descent,
		"CapHeight":   f.capHeight,
		"StemV":       80,
		"FontFile2":   fmt.Sprintf("%d 0 R", fileNum),
	}))

	return w.AddObject(write.FormatDictionary(write.Dictionary{
		"Type":           "/Font",
		"Subtype":        "/TrueType",
		"BaseFont":       "/" + f.name,
		"FirstChar":      32,
		"LastChar":       255,
		"Widths":         f.widths[32:],
		"Encoding":       "/WinAnsiEncoding",
		"FontDescriptor": fmt.Sprintf("%d 0 R", descNum),
	}))
}
