package compose

import (
	"github.com/benedoc-inc/pdfburn/core/write"
)

var (
	radioBorder = RGB{0.2, 0.2, 0.2}
	radioAccent = RGB{0.15, 0.4, 0.9}
)

const radioBorderWidth = 1.5

// drawRadio draws a ring centred in box, filled with a dot when selected.
// Only the exact value "true" selects.
func drawRadio(cs *write.ContentStream, box Box, value string) {
	cx := box.X + box.W/2
	cy := box.Y + box.H/2
	half := min(box.W, box.H) / 2

	cs.SaveState()
	cs.SetStrokeColorRGB(radioBorder.R, radioBorder.G, radioBorder.B)
	cs.SetLineWidth(radioBorderWidth)
	cs.Circle(cx, cy, 0.8*half).Stroke()

	if value == "true" {
		cs.SetFillColorRGB(radioAccent.R, radioAccent.G, radioAccent.B)
		cs.Circle(cx, cy, 0.4*half).Fill()
	}
	cs.RestoreState()
}
