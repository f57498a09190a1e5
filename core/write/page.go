package write

import (
	"fmt"
	"sort"
	"strings"
)

// PageSize represents standard page dimensions in points (1 point = 1/72 inch)
type PageSize struct {
	Width  float64
	Height float64
}

// Standard page sizes
var (
	PageSizeLetter = PageSize{612, 792}  // 8.5 x 11 inches
	PageSizeA4     = PageSize{595, 842}  // 210 x 297 mm
	PageSizeLegal  = PageSize{612, 1008} // 8.5 x 14 inches
)

// PageBuilder helps build PDF pages
type PageBuilder struct {
	writer     *PDFWriter
	size       PageSize
	fonts      map[string]int // resource name -> object number
	fontNames  map[string]string
	content    *ContentStream
	pageObjNum int
}

// NewPageBuilder creates a new page builder
func (w *PDFWriter) NewPageBuilder(size PageSize) *PageBuilder {
	return &PageBuilder{
		writer:    w,
		size:      size,
		fonts:     make(map[string]int),
		fontNames: make(map[string]string),
		content:   NewContentStream(),
	}
}

// Content returns the content stream for adding graphics/text
func (pb *PageBuilder) Content() *ContentStream {
	return pb.content
}

// Size returns the page size
func (pb *PageBuilder) Size() PageSize {
	return pb.size
}

// AddStandardFont adds one of the standard 14 fonts (Helvetica, Times-Roman, etc.)
// with WinAnsi encoding. Returns the resource name to use (e.g., "/F1").
func (pb *PageBuilder) AddStandardFont(fontName string) string {
	if name, ok := pb.fontNames[fontName]; ok {
		return "/" + name
	}

	resourceName := fmt.Sprintf("F%d", len(pb.fonts)+1)
	fontDict := FormatDictionary(Dictionary{
		"Type":     "/Font",
		"Subtype":  "/Type1",
		"BaseFont": "/" + fontName,
		"Encoding": "/WinAnsiEncoding",
	})
	pb.fonts[resourceName] = pb.writer.AddObject(fontDict)
	pb.fontNames[fontName] = resourceName

	return "/" + resourceName
}

// Build finalizes the page and returns the page object number
func (pb *PageBuilder) Build(pagesObjNum int) int {
	contentObjNum := pb.writer.AddStreamObject(Dictionary{}, pb.content.Bytes(), true)

	resources := Dictionary{}
	if len(pb.fonts) > 0 {
		resources["Font"] = Raw(resourceDict(pb.fonts))
	}

	pageDict := Dictionary{
		"Type":      "/Page",
		"Parent":    fmt.Sprintf("%d 0 R", pagesObjNum),
		"MediaBox":  []float64{0, 0, pb.size.Width, pb.size.Height},
		"Contents":  fmt.Sprintf("%d 0 R", contentObjNum),
		"Resources": resources,
	}
	pb.pageObjNum = pb.writer.AddObject(FormatDictionary(pageDict))

	return pb.pageObjNum
}

// resourceDict renders name -> object number pairs in sorted order
func resourceDict(entries map[string]int) string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("<<")
	for _, name := range names {
		fmt.Fprintf(&sb, "/%s %d 0 R", name, entries[name])
	}
	sb.WriteString(">>")
	return sb.String()
}

// SimplePDFBuilder provides a high-level API for creating simple PDFs
type SimplePDFBuilder struct {
	writer        *PDFWriter
	pages         []int
	pagesObjNum   int
	catalogObjNum int
}

// NewSimplePDFBuilder creates a new simple PDF builder
func NewSimplePDFBuilder() *SimplePDFBuilder {
	return &SimplePDFBuilder{
		writer: NewPDFWriter(),
		pages:  make([]int, 0),
	}
}

// Writer returns the underlying PDF writer for advanced operations
func (b *SimplePDFBuilder) Writer() *PDFWriter {
	return b.writer
}

// AddPage adds a new page and returns a page builder
func (b *SimplePDFBuilder) AddPage(size PageSize) *PageBuilder {
	return b.writer.NewPageBuilder(size)
}

// FinalizePage adds a built page to the document
func (b *SimplePDFBuilder) FinalizePage(pb *PageBuilder) {
	if b.pagesObjNum == 0 {
		b.pagesObjNum = b.writer.ReserveObject()
	}
	b.pages = append(b.pages, pb.Build(b.pagesObjNum))
}

// Bytes returns the complete PDF
func (b *SimplePDFBuilder) Bytes() ([]byte, error) {
	if len(b.pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	kids := make([]any, 0, len(b.pages))
	for _, pageNum := range b.pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}

	b.writer.SetObject(b.pagesObjNum, FormatDictionary(Dictionary{
		"Type":  "/Pages",
		"Kids":  kids,
		"Count": len(b.pages),
	}))

	if b.catalogObjNum == 0 {
		b.catalogObjNum = b.writer.AddObject(FormatDictionary(Dictionary{
			"Type":  "/Catalog",
			"Pages": fmt.Sprintf("%d 0 R", b.pagesObjNum),
		}))
		b.writer.SetRoot(b.catalogObjNum)
	}

	return b.writer.Bytes()
}

// Pages returns the list of page object numbers
func (b *SimplePDFBuilder) Pages() []int {
	return b.pages
}
