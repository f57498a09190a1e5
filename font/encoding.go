package font

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// encodeWinAnsi converts text to WinAnsiEncoding (Windows-1252) codes
func encodeWinAnsi(text string) ([]byte, int) {
	out := make([]byte, 0, len(text))
	replaced := 0
	for _, r := range text {
		if r == '\t' {
			r = ' '
		}
		if b, ok := charmap.Windows1252.EncodeRune(r); ok && b >= 0x20 {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
		replaced++
	}
	return out, replaced
}

// winAnsiWidth estimates the width of a code from the ASCII metrics. Accented
// letters take the width of their base letter; other symbols outside ASCII
// take the width of 'n'.
func winAnsiWidth(code byte, ascii *afmWidths) uint16 {
	if code >= 32 && code <= 126 {
		return ascii[code-32]
	}
	if code < 32 {
		return 0
	}

	r := charmap.Windows1252.DecodeByte(code)
	switch r {
	case '\u00a0':
		return ascii[0]
	case '–':
		return ascii['-'-32]
	case '‘', '’', '‚':
		return ascii['\''-32]
	case '“', '”', '„':
		return ascii['"'-32]
	}

	if decomposed := norm.NFD.String(string(r)); decomposed != "" {
		if base := decomposed[0]; base >= 32 && base <= 126 {
			return ascii[base-32]
		}
	}
	return ascii['n'-32]
}
