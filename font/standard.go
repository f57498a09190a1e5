package font

import (
	"github.com/benedoc-inc/pdfburn/core/write"
)

// afmWidths holds advance widths for codes 32..126 in 1/1000 em
type afmWidths [95]uint16

var helveticaWidths = afmWidths{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556,
	278, 278, 584, 584, 584, 556, 1015,
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833,
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611,
	278, 278, 278, 469, 556, 333,
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833,
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500,
	334, 260, 334, 584,
}

var helveticaBoldWidths = afmWidths{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556,
	333, 333, 584, 584, 584, 611, 975,
	722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833,
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611,
	333, 278, 333, 584, 556, 333,
	556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889,
	611, 611, 611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500,
	389, 280, 389, 584,
}

var timesRomanWidths = afmWidths{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
	278, 278, 564, 564, 564, 444, 921,
	722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889,
	722, 722, 556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611,
	333, 278, 333, 469, 500, 333,
	444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778,
	500, 500, 500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444,
	480, 200, 480, 541,
}

var timesBoldWidths = afmWidths{
	250, 333, 555, 500, 500, 1000, 833, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
	333, 333, 570, 570, 570, 500, 930,
	722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944,
	722, 778, 611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667,
	333, 278, 333, 581, 500, 333,
	500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833,
	556, 500, 556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444,
	394, 220, 394, 520,
}

var timesItalicWidths = afmWidths{
	250, 333, 420, 500, 500, 833, 778, 214, 333, 333, 500, 675, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
	333, 333, 675, 675, 675, 500, 920,
	611, 611, 667, 722, 611, 611, 722, 722, 333, 444, 667, 556, 833,
	667, 722, 611, 722, 611, 500, 556, 722, 611, 833, 611, 556, 556,
	389, 278, 389, 422, 500, 333,
	500, 500, 444, 500, 444, 278, 500, 500, 278, 278, 444, 278, 722,
	500, 500, 500, 500, 389, 389, 278, 500, 444, 667, 444, 444, 389,
	400, 275, 400, 541,
}

var timesBoldItalicWidths = afmWidths{
	250, 389, 555, 500, 500, 833, 778, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
	333, 333, 570, 570, 570, 500, 832,
	667, 667, 667, 722, 667, 667, 722, 778, 389, 500, 667, 611, 889,
	722, 722, 611, 722, 667, 556, 611, 722, 667, 889, 667, 611, 611,
	333, 278, 333, 570, 500, 333,
	500, 500, 444, 500, 444, 333, 500, 556, 278, 278, 500, 278, 778,
	556, 500, 500, 500, 389, 389, 278, 556, 444, 667, 500, 444, 389,
	348, 220, 348, 570,
}

// standardFace is one of the standard 14 Type1 fonts
type standardFace struct {
	name   string
	widths [256]float64
}

func newStandardFace(name string, ascii *afmWidths) *standardFace {
	f := &standardFace{name: name}
	for code := 0; code < 256; code++ {
		f.widths[code] = float64(fixedWidth)
		if ascii != nil {
			f.widths[code] = float64(winAnsiWidth(byte(code), ascii))
		}
	}
	return f
}

// fixedWidth is the advance of every Courier glyph
const fixedWidth = 600

func (f *standardFace) Name() string { return f.name }

func (f *standardFace) Encode(text string) ([]byte, int) {
	return encodeWinAnsi(text)
}

func (f *standardFace) Width(encoded []byte, size float64) float64 {
	return sumWidths(&f.widths, encoded, size)
}

func (f *standardFace) Embed(w write.ObjectWriter) int {
	return w.AddObject(write.FormatDictionary(write.Dictionary{
		"Type":     "/Font",
		"Subtype":  "/Type1",
		"BaseFont": "/" + f.name,
		"Encoding": "/WinAnsiEncoding",
	}))
}

func sumWidths(widths *[256]float64, encoded []byte, size float64) float64 {
	var total float64
	for _, b := range encoded {
		total += widths[b]
	}
	return total * size / 1000
}

var (
	helvetica = &family{
		regular:    newStandardFace("Helvetica", &helveticaWidths),
		bold:       newStandardFace("Helvetica-Bold", &helveticaBoldWidths),
		italic:     newStandardFace("Helvetica-Oblique", &helveticaWidths),
		boldItalic: newStandardFace("Helvetica-BoldOblique", &helveticaBoldWidths),
	}
	times = &family{
		regular:    newStandardFace("Times-Roman", &timesRomanWidths),
		bold:       newStandardFace("Times-Bold", &timesBoldWidths),
		italic:     newStandardFace("Times-Italic", &timesItalicWidths),
		boldItalic: newStandardFace("Times-BoldItalic", &timesBoldItalicWidths),
	}
	courier = &family{
		regular: newStandardFace("Courier", nil),
		bold:    newStandardFace("Courier-Bold", nil),
	}
)

// standardFamilies maps family names to standard fonts. Families the
// renderer has no metric-compatible font for map to the nearest style.
var standardFamilies = map[string]*family{
	"":                helvetica,
	"inter":           helvetica,
	"helvetica":       helvetica,
	"courier":         courier,
	"courier new":     courier,
	"times":           times,
	"times new roman": times,
	"times-roman":     times,
	"roboto":          times,
	"arial":           times,
	"georgia":         times,
}
