// Package sample builds the canonical demonstration document: a one-page
// agreement with a signature placeholder. It is served to editors that have
// no document of their own and burned when a request carries none.
package sample

import (
	"crypto/sha256"
	"sync"
	"time"

	"github.com/benedoc-inc/pdfburn/core/write"
	"github.com/benedoc-inc/pdfburn/types"
)

const (
	Title    = "Non-Disclosure Agreement"
	bodyLine = "This is a sample document for testing signature placement."
	signHere = "Sign Here:"

	titleSize = 30.0
	bodySize  = 14.0
	margin    = 50.0
)

// created is fixed so the document, and every digest derived from it, is reproducible
var created = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// PlaceholderBox is the outlined signature area, in points from the bottom-left
var PlaceholderBox = struct{ X, Y, W, H float64 }{
	X: margin,
	Y: write.PageSizeLetter.Height - 12*titleSize,
	W: 200,
	H: 50,
}

var document = sync.OnceValues(build)

// Document returns the sample PDF. The same bytes are returned on every call;
// callers must not modify them.
func Document() ([]byte, error) {
	return document()
}

func build() ([]byte, error) {
	b := write.NewSimplePDFBuilder()
	w := b.Writer()
	id := sha256.Sum256([]byte(Title))
	w.SetFileID(id[:16])

	size := write.PageSizeLetter
	page := b.AddPage(size)
	font := page.AddStandardFont("Times-Roman")

	cs := page.Content()
	cs.SetFillColorGray(0)
	for _, line := range []struct {
		text string
		size float64
		y    float64
	}{
		{Title, titleSize, size.Height - 4*titleSize},
		{bodyLine, bodySize, size.Height - 6*titleSize},
		{signHere, bodySize, size.Height - 10*titleSize},
	} {
		cs.BeginText().SetFont(font, line.size).SetTextPosition(margin, line.y).ShowText(line.text).EndText()
	}

	box := PlaceholderBox
	cs.SetStrokeColorRGB(0, 0, 0).SetLineWidth(1).Rectangle(box.X, box.Y, box.W, box.H).Stroke()
	b.FinalizePage(page)

	w.SetMetadata(&write.Metadata{
		Title:        Title,
		Producer:     "pdfburn",
		CreationDate: created,
	})
	return b.Bytes()
}

// SignatureRect returns the placeholder box as a normalized rectangle, the
// way an editor showing the sample page would report it
func SignatureRect() types.NormalizedRect {
	size := write.PageSizeLetter
	box := PlaceholderBox
	return types.NormalizedRect{
		X: box.X / size.Width,
		Y: (size.Height - box.Y - box.H) / size.Height,
		W: box.W / size.Width,
		H: box.H / size.Height,
	}
}
