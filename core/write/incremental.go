package write

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/benedoc-inc/pdfburn/core/parse"
)

// IncrementalWriter appends an update section to an existing document. The
// original bytes are kept verbatim; new and replaced objects follow them,
// indexed by a new cross-reference section chained to the old one.
type IncrementalWriter struct {
	doc        *parse.Document
	objects    map[int]*PDFObject
	nextObjNum int
}

// NewIncrementalWriter starts an update of doc
func NewIncrementalWriter(doc *parse.Document) *IncrementalWriter {
	return &IncrementalWriter{
		doc:        doc,
		objects:    make(map[int]*PDFObject),
		nextObjNum: max(doc.Trailer().Size, 1),
	}
}

// AddObject adds a new object and returns its object number
func (w *IncrementalWriter) AddObject(content []byte) int {
	objNum := w.nextObjNum
	w.nextObjNum++

	w.objects[objNum] = &PDFObject{Number: objNum, Content: content}
	return objNum
}

// AddStreamObject adds a stream object with dictionary and data
func (w *IncrementalWriter) AddStreamObject(dict Dictionary, data []byte, compress bool) int {
	objNum := w.nextObjNum
	w.nextObjNum++

	w.objects[objNum] = newStreamObject(objNum, dict, data, compress)
	return objNum
}

// ReplaceObject writes a new version of an existing object
func (w *IncrementalWriter) ReplaceObject(objNum int, content []byte) error {
	gen := 0
	if e, ok := w.doc.Entry(objNum); ok {
		if !e.InStream {
			gen = e.Gen
		}
	} else if _, ok := w.objects[objNum]; !ok {
		return fmt.Errorf("object %d does not exist", objNum)
	}

	w.objects[objNum] = &PDFObject{Number: objNum, Generation: gen, Content: content}
	return nil
}

// Changed returns the number of objects the update will write
func (w *IncrementalWriter) Changed() int {
	return len(w.objects)
}

// Write writes the original document followed by the update
func (w *IncrementalWriter) Write(out io.Writer) error {
	raw := w.doc.Raw()
	tr := w.doc.Trailer()

	var buf bytes.Buffer
	buf.Grow(len(raw) + 4096)
	buf.Write(raw)
	if n := len(raw); n > 0 && raw[n-1] != '\n' && raw[n-1] != '\r' {
		buf.WriteByte('\n')
	}

	positions := writeObjects(&buf, w.objects)

	fields := trailerFields{
		Size: w.nextObjNum,
		Root: tr.Root.String(),
		ID:   tr.ID,
	}
	if !tr.Info.IsZero() {
		fields.Info = tr.Info.String()
	}

	var xrefPos int64
	var err error
	switch {
	case tr.Recovered:
		// the old xref can't be chained to, so index every object
		rows, compressed := w.fullRows(positions)
		if compressed {
			xrefPos, err = writeXRefStream(&buf, w.nextObjNum, rows, true, fields)
		} else {
			xrefPos = writeXRefTable(&buf, rows, true, fields)
		}
	case tr.XRefStream:
		fields.Prev = tr.StartXRef
		xrefPos, err = writeXRefStream(&buf, w.nextObjNum, w.updateRows(positions), false, fields)
	default:
		fields.Prev = tr.StartXRef
		xrefPos = writeXRefTable(&buf, w.updateRows(positions), false, fields)
	}
	if err != nil {
		return fmt.Errorf("failed to write xref: %w", err)
	}

	buf.WriteString(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefPos))

	_, err = out.Write(buf.Bytes())
	return err
}

// Bytes returns the updated document
func (w *IncrementalWriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *IncrementalWriter) updateRows(positions map[int]int64) []xrefRow {
	nums := make([]int, 0, len(positions))
	for num := range positions {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	rows := make([]xrefRow, 0, len(nums))
	for _, num := range nums {
		rows = append(rows, xrefRow{Num: num, Type: 1, Field2: positions[num], Field3: w.objects[num].Generation})
	}
	return rows
}

func (w *IncrementalWriter) fullRows(positions map[int]int64) ([]xrefRow, bool) {
	var rows []xrefRow
	compressed := false
	for num := 1; num < w.nextObjNum; num++ {
		if pos, ok := positions[num]; ok {
			rows = append(rows, xrefRow{Num: num, Type: 1, Field2: pos, Field3: w.objects[num].Generation})
			continue
		}
		e, ok := w.doc.Entry(num)
		switch {
		case !ok:
			rows = append(rows, xrefRow{Num: num, Type: 0, Field3: 1})
		case e.InStream:
			compressed = true
			rows = append(rows, xrefRow{Num: num, Type: 2, Field2: int64(e.StreamNum), Field3: e.Index})
		default:
			rows = append(rows, xrefRow{Num: num, Type: 1, Field2: e.Offset, Field3: e.Gen})
		}
	}
	return rows, compressed
}
