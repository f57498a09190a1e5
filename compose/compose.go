// Package compose burns annotation fields into the pages of a PDF document.
//
// A burn projects each field's normalized rectangle onto its page, draws the
// field (text, date, radio ring, or contain-fitted image) into an overlay
// content stream and appends the result to the original bytes as an
// incremental update. Digests of the exact input and output bytes are
// returned with the document.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/benedoc-inc/pdfburn/core/parse"
	"github.com/benedoc-inc/pdfburn/core/write"
	"github.com/benedoc-inc/pdfburn/font"
	"github.com/benedoc-inc/pdfburn/types"
)

// DefaultMaxImagePixels caps decoded image size; larger images are downscaled
const DefaultMaxImagePixels = 16 << 20

// Options configures a Compositor. It is built once at startup.
type Options struct {
	// Workers bounds parallel image decoding; zero means GOMAXPROCS
	Workers int
	// MaxImagePixels is the largest image embedded at full resolution;
	// zero means DefaultMaxImagePixels, negative disables downscaling
	MaxImagePixels int
	// Fonts holds registered TrueType families; nil allows only the
	// built-in table
	Fonts *font.Registry
	// Fallback is burned when a request carries no document
	Fallback []byte
	Logger   *slog.Logger
}

// Compositor burns field sets into documents. It holds no per-burn state
// and is safe for concurrent use.
type Compositor struct {
	opts Options
	log  *slog.Logger
}

// New returns a Compositor with defaults applied to opts
func New(opts Options) *Compositor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxImagePixels == 0 {
		opts.MaxImagePixels = DefaultMaxImagePixels
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Compositor{opts: opts, log: log}
}

// Burn draws every field of req into its document. Any field failure aborts
// the whole burn; no partial output is returned.
func (c *Compositor) Burn(ctx context.Context, req types.BurnRequest) (*types.BurnResult, error) {
	if len(req.Fields) == 0 {
		return nil, types.NewBurnError(types.ErrCodeEmptyFieldSet, "no fields to burn")
	}

	input, err := c.documentBytes(req.DocumentData)
	if err != nil {
		return nil, err
	}

	doc, err := parse.Open(input, &parse.Options{Logger: c.log})
	if err != nil {
		return nil, types.WrapError(types.ErrCodeDocumentLoad, "cannot parse document", err)
	}
	pages, err := doc.Pages()
	if err != nil {
		return nil, types.WrapError(types.ErrCodeDocumentLoad, "cannot read page tree", err)
	}

	images, err := c.decodeImages(ctx, req.Fields)
	if err != nil {
		return nil, err
	}

	b := &burner{
		doc:      doc,
		pages:    pages,
		w:        write.NewIncrementalWriter(doc),
		fonts:    c.opts.Fonts,
		fontObjs: make(map[string]int),
		overlays: make(map[int]*pageOverlay),
		warnings: types.NewWarningCollector(),
		log:      c.log,
	}
	for i := range req.Fields {
		if err := b.draw(&req.Fields[i], i, images[i]); err != nil {
			return nil, err
		}
	}

	output, err := b.finish()
	if err != nil {
		return nil, types.WrapError(types.ErrCodeWriteError, "cannot write document", err)
	}

	result := &types.BurnResult{
		Output:       output,
		InputDigest:  Digest(input),
		OutputDigest: Digest(output),
		Pages:        len(pages),
		Drawn:        b.drawn,
		Warnings:     b.warnings.Warnings(),
	}
	c.log.Debug("burned document",
		"document", req.DocumentID,
		"fields", len(req.Fields),
		"drawn", result.Drawn,
		"warnings", len(result.Warnings),
		"input_bytes", len(input),
		"output_bytes", len(output))
	return result, nil
}

// documentBytes decodes the request's document, or returns the fallback
func (c *Compositor) documentBytes(data string) ([]byte, error) {
	if data == "" {
		if len(c.opts.Fallback) == 0 {
			return nil, types.NewBurnError(types.ErrCodeInvalidInput, "no document supplied and no fallback configured")
		}
		return c.opts.Fallback, nil
	}

	p, err := decodePayload(data)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeInvalidInput, "cannot decode document data", err)
	}
	return p.Data, nil
}

// burner holds the state of a single burn
type burner struct {
	doc      *parse.Document
	pages    []parse.Page
	w        *write.IncrementalWriter
	fonts    *font.Registry
	fontObjs map[string]int // face name -> font object, shared by all pages
	overlays map[int]*pageOverlay
	warnings *types.WarningCollector
	log      *slog.Logger
	drawn    int
}

// overlay returns the overlay of the field's page. Page numbers outside
// the document fall back to the first page.
func (b *burner) overlay(f *types.Field, index int) *pageOverlay {
	i := f.PageNumber - 1
	if i < 0 || i >= len(b.pages) {
		b.log.Debug("page number out of range, using first page",
			"field", f.Label(index), "page", f.PageNumber, "pages", len(b.pages))
		b.warnings.Addf(types.WarningLevelInfo, types.WarnPageClamped, f.Label(index),
			"page %d does not exist, drawn on page 1", f.PageNumber)
		i = 0
	}

	o, ok := b.overlays[i]
	if !ok {
		o = newPageOverlay(b.doc, b.pages[i])
		b.overlays[i] = o
	}
	return o
}

func (b *burner) embedFont(face font.Face) int {
	if num, ok := b.fontObjs[face.Name()]; ok {
		return num
	}
	num := face.Embed(b.w)
	b.fontObjs[face.Name()] = num
	return num
}

func (b *burner) draw(f *types.Field, index int, img *decodedImage) error {
	switch f.Type {
	case types.FieldText:
		if f.Value == "" || f.Value == types.PlaceholderText {
			return nil
		}
		return b.drawText(f, index, f.TextAttrs().TextStyle, f.Value, false)

	case types.FieldDate:
		if f.Value == "" {
			return nil
		}
		attrs := f.DateAttrs()
		return b.drawText(f, index, attrs.TextStyle, attrs.FormatValue(f.Value), true)

	case types.FieldRadio:
		o := b.overlay(f, index)
		drawRadio(o.content, Project(f.Rect, o.page.MediaBox), f.Value)
		b.drawn++
		return nil

	case types.FieldImage, types.FieldSignature:
		if img == nil {
			return nil
		}
		return b.drawImage(f, index, img)
	}

	return types.NewBurnErrorf(types.ErrCodeInvalidInput, "unknown field type %q", f.Type).ForField(f)
}

func (b *burner) drawText(f *types.Field, index int, style types.TextStyle, value string, singleLine bool) error {
	label := f.Label(index)
	o := b.overlay(f, index)
	box := Project(f.Rect, o.page.MediaBox)

	run, res := layoutText(b.fonts, style, value, box, singleLine)
	if res.Substituted {
		b.warnings.Addf(types.WarningLevelInfo, types.WarnFontSubstituted, label,
			"font %q bold=%t italic=%t drawn with %s", style.FontFamily, style.Bold, style.Italic, res.Face.Name())
	}
	if run.replaced > 0 {
		b.warnings.Addf(types.WarningLevelWarning, types.WarnGlyphReplaced, label,
			"%d characters have no glyph in %s and were drawn as '?'", run.replaced, res.Face.Name())
	}
	if run.bottom(box) < box.Y {
		b.warnings.Addf(types.WarningLevelInfo, types.WarnTextOverflow, label,
			"text runs below the bottom of its box")
	}

	run.draw(o.content, o.fontResource(run.face, b.embedFont), box)
	b.drawn++
	return nil
}

func (b *burner) drawImage(f *types.Field, index int, img *decodedImage) error {
	label := f.Label(index)
	o := b.overlay(f, index)
	box := Project(f.Rect, o.page.MediaBox)
	if box.Empty() {
		b.warnings.Addf(types.WarningLevelWarning, types.WarnFieldSkipped, label, "image box has no area")
		return nil
	}

	info, err := img.embed(b.w)
	if err != nil {
		return types.WrapError(types.ErrCodeImageDecode, "cannot embed image", err).ForField(f)
	}
	if img.downscaled {
		b.warnings.Addf(types.WarningLevelInfo, types.WarnImageDownscaled, label,
			"image of %dx%d pixels downscaled to %dx%d", img.width, img.height, info.Width, info.Height)
	}

	fit := ContainFit(box, float64(img.width), float64(img.height))
	o.content.DrawImageAt(o.imageResource(info.ObjectNum), fit.X, fit.Y, fit.W, fit.H)
	b.drawn++
	return nil
}

// finish applies every page overlay, in page order, and serializes the update
func (b *burner) finish() ([]byte, error) {
	indexes := make([]int, 0, len(b.overlays))
	for i := range b.overlays {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		o := b.overlays[i]
		if o.content.Len() == 0 {
			continue
		}
		if err := o.apply(b.doc, b.w); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return b.w.Bytes()
}
