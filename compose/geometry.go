package compose

import (
	"github.com/benedoc-inc/pdfburn/core/parse"
	"github.com/benedoc-inc/pdfburn/types"
)

// Box is a rectangle in PDF user space: points, bottom-left origin
type Box struct {
	X, Y, W, H float64
}

// Empty reports whether the box has no drawable area
func (b Box) Empty() bool {
	return !(b.W > 0) || !(b.H > 0)
}

// Project maps a normalized rectangle (top-left origin, fractions of the
// rendered page) onto a page's media box. Values outside the unit square
// project outside the page; nothing is clamped.
func Project(rect types.NormalizedRect, media parse.Rect) Box {
	pw, ph := media.Width(), media.Height()

	boxW := rect.W * pw
	boxH := rect.H * ph
	return Box{
		X: media.LLX + rect.X*pw,
		Y: media.LLY + ph - rect.Y*ph - boxH,
		W: boxW,
		H: boxH,
	}
}

// ContainFit scales an image of the given pixel size to fit inside box,
// keeping its aspect ratio, and centres it
func ContainFit(box Box, imgW, imgH float64) Box {
	if box.Empty() || !(imgW > 0) || !(imgH > 0) {
		return Box{X: box.X, Y: box.Y}
	}

	imgAspect := imgW / imgH
	boxAspect := box.W / box.H

	var w, h float64
	if imgAspect > boxAspect {
		w = box.W
		h = box.W / imgAspect
	} else {
		h = box.H
		w = box.H * imgAspect
	}

	return Box{
		X: box.X + (box.W-w)/2,
		Y: box.Y + (box.H-h)/2,
		W: w,
		H: h,
	}
}
