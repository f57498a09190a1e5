package compose

import (
	"strconv"
	"strings"
)

// RGB is a colour with components in [0, 1]
type RGB struct {
	R, G, B float64
}

// Black is the fallback for every colour that cannot be parsed
var Black = RGB{}

// ParseHex parses "#RGB" or "#RRGGBB" (the '#' is optional). Anything else,
// including the empty string, is black.
func ParseHex(s string) RGB {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Black
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black
	}
	return RGB{
		R: float64(v>>16&0xFF) / 255,
		G: float64(v>>8&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}
}
