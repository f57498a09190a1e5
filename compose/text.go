package compose

import (
	"bytes"
	"strings"

	"github.com/benedoc-inc/pdfburn/core/write"
	"github.com/benedoc-inc/pdfburn/font"
	"github.com/benedoc-inc/pdfburn/types"
)

// Text layout constants, in points or multiples of the font size
const (
	textPadding     = 4.0
	lineHeight      = 1.2
	underlineWidth  = 0.05
	underlineOffset = 0.15
)

// textRun is one field's text, encoded and ready to lay out
type textRun struct {
	face     font.Face
	size     float64
	color    RGB
	lines    [][]byte
	under    bool
	replaced int // runes with no WinAnsi code
}

// measureFunc returns the advance of encoded text in points
type measureFunc func(encoded []byte) float64

// wrapLines breaks paragraphs of encoded text into lines no wider than
// maxWidth. Words wider than a line are broken between characters. Every
// line holds at least one character, so a box narrower than a single glyph
// still makes progress.
func wrapLines(paragraphs [][]byte, maxWidth float64, measure measureFunc) [][]byte {
	var lines [][]byte
	for _, para := range paragraphs {
		words := bytes.FieldsFunc(para, func(r rune) bool { return r == ' ' })
		if len(words) == 0 {
			lines = append(lines, nil)
			continue
		}

		var line []byte
		for _, word := range words {
			if len(line) > 0 {
				candidate := append(append(append([]byte{}, line...), ' '), word...)
				if measure(candidate) <= maxWidth {
					line = candidate
					continue
				}
				lines = append(lines, line)
				line = nil
			}

			for measure(word) > maxWidth && len(word) > 1 {
				n := fitPrefix(word, maxWidth, measure)
				lines = append(lines, word[:n])
				word = word[n:]
			}
			line = append([]byte{}, word...)
		}
		lines = append(lines, line)
	}
	return lines
}

// fitPrefix returns how many leading bytes of word fit in maxWidth, at least one
func fitPrefix(word []byte, maxWidth float64, measure measureFunc) int {
	n := 1
	for n < len(word) && measure(word[:n+1]) <= maxWidth {
		n++
	}
	return n
}

// layoutText resolves the style and lays value out for box. Text fields
// wrap at newlines and at the box width; single-line runs (dates) join
// newlines with spaces and never wrap.
func layoutText(fonts *font.Registry, style types.TextStyle, value string, box Box, singleLine bool) (*textRun, font.Resolution) {
	res := fonts.Resolve(font.Style{Family: style.FontFamily, Bold: style.Bold, Italic: style.Italic})

	size := style.FontSize
	if size <= 0 {
		size = types.DefaultFontSize
	}

	run := &textRun{
		face:  res.Face,
		size:  size,
		color: ParseHex(style.Color),
		under: style.Underline,
	}

	value = strings.ReplaceAll(value, "\r\n", "\n")
	if singleLine {
		encoded, replaced := res.Face.Encode(strings.ReplaceAll(value, "\n", " "))
		run.lines = [][]byte{encoded}
		run.replaced = replaced
		return run, res
	}

	var paragraphs [][]byte
	for _, para := range strings.Split(value, "\n") {
		encoded, replaced := res.Face.Encode(para)
		paragraphs = append(paragraphs, encoded)
		run.replaced += replaced
	}
	measure := func(b []byte) float64 { return res.Face.Width(b, size) }
	run.lines = wrapLines(paragraphs, box.W-2*textPadding, measure)
	return run, res
}

// draw writes the run's lines from the top-left of box downwards. The first
// baseline sits textPadding plus one font size below the top edge.
func (r *textRun) draw(cs *write.ContentStream, fontRes string, box Box) {
	x := box.X + textPadding
	baseline := box.Y + box.H - textPadding - r.size
	step := r.size * lineHeight

	cs.SaveState()
	cs.SetFillColorRGB(r.color.R, r.color.G, r.color.B)
	cs.BeginText()
	cs.SetFont(fontRes, r.size)
	for i, line := range r.lines {
		if len(line) == 0 {
			continue
		}
		cs.SetTextMatrix(1, 0, 0, 1, x, baseline-float64(i)*step)
		cs.ShowTextBytes(line)
	}
	cs.EndText()

	if r.under {
		cs.SetStrokeColorRGB(r.color.R, r.color.G, r.color.B)
		cs.SetLineWidth(r.size * underlineWidth)
		for i, line := range r.lines {
			if len(line) == 0 {
				continue
			}
			y := baseline - float64(i)*step - r.size*underlineOffset
			cs.Line(x, y, x+r.face.Width(line, r.size), y)
		}
	}
	cs.RestoreState()
}

// bottom returns the lowest baseline of the run when drawn in box
func (r *textRun) bottom(box Box) float64 {
	return box.Y + box.H - textPadding - r.size - float64(len(r.lines)-1)*r.size*lineHeight
}
