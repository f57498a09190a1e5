// Package coords converts field rectangles between rendered-page pixels and
// resolution-independent unit rectangles. Both spaces use a top-left origin.
package coords

import (
	"github.com/benedoc-inc/pdfburn/types"
)

// PixelRect is a rectangle in rendered-page pixels
type PixelRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToNormalized divides a pixel rectangle by the frame it was measured in.
// A frame with a non-positive dimension yields the zero rectangle.
// Results are not clamped: a field dragged past the page edge keeps its overhang.
func ToNormalized(x, y, width, height, frameWidth, frameHeight float64) types.NormalizedRect {
	if !(frameWidth > 0) || !(frameHeight > 0) {
		return types.NormalizedRect{}
	}

	return types.NormalizedRect{
		X: x / frameWidth,
		Y: y / frameHeight,
		W: width / frameWidth,
		H: height / frameHeight,
	}
}

// ToPixel is the inverse of ToNormalized, with the same zero-frame guard
func ToPixel(rect types.NormalizedRect, frameWidth, frameHeight float64) PixelRect {
	if !(frameWidth > 0) || !(frameHeight > 0) {
		return PixelRect{}
	}

	return PixelRect{
		X:      rect.X * frameWidth,
		Y:      rect.Y * frameHeight,
		Width:  rect.W * frameWidth,
		Height: rect.H * frameHeight,
	}
}

// Frame is the rendered size of a page at the moment a rectangle was measured
type Frame struct {
	Width  float64
	Height float64
}

// Valid reports whether both dimensions are positive
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

func (f Frame) Normalize(r PixelRect) types.NormalizedRect {
	return ToNormalized(r.X, r.Y, r.Width, r.Height, f.Width, f.Height)
}

func (f Frame) Pixels(r types.NormalizedRect) PixelRect {
	return ToPixel(r, f.Width, f.Height)
}
