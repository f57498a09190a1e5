// Package write produces PDF files: complete documents built from scratch and
// incremental updates appended to existing ones.
package write

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PDFObject represents a PDF object with its content
type PDFObject struct {
	Number     int
	Generation int
	Content    []byte     // Raw content (dictionary, array, etc.)
	Stream     []byte     // Stream data (if this is a stream object)
	Dict       Dictionary // Stream dictionary
}

// Dictionary represents a PDF dictionary. Keys may omit the leading slash.
type Dictionary map[string]any

// Raw is PDF syntax written verbatim, e.g. "[0 0 612 792]" or "<</F1 4 0 R>>"
type Raw string

// ObjectWriter is implemented by both writers so that resources such as
// fonts and images can be added to either.
type ObjectWriter interface {
	AddObject(content []byte) int
	AddStreamObject(dict Dictionary, data []byte, compress bool) int
}

// PDFWriter builds PDF files from scratch
type PDFWriter struct {
	objects       map[int]*PDFObject
	nextObjNum    int
	rootRef       string
	infoRef       string
	fileID        []byte
	pdfVersion    string
	useXRefStream bool
}

// NewPDFWriter creates a new PDF writer
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{
		objects:    make(map[int]*PDFObject),
		nextObjNum: 1,
		pdfVersion: "1.7",
	}
}

// SetFileID sets the /ID written to the trailer
func (w *PDFWriter) SetFileID(id []byte) {
	w.fileID = id
}

// UseXRefStream enables cross-reference stream writing (PDF 1.5+)
func (w *PDFWriter) UseXRefStream(enable bool) {
	w.useXRefStream = enable
}

// AddObject adds a new object and returns its object number
func (w *PDFWriter) AddObject(content []byte) int {
	objNum := w.nextObjNum
	w.nextObjNum++

	w.objects[objNum] = &PDFObject{Number: objNum, Content: content}
	return objNum
}

// AddStreamObject adds a stream object with dictionary and data
func (w *PDFWriter) AddStreamObject(dict Dictionary, data []byte, compress bool) int {
	objNum := w.nextObjNum
	w.nextObjNum++

	w.objects[objNum] = newStreamObject(objNum, dict, data, compress)
	return objNum
}

// ReserveObject allocates an object number to be filled later with SetObject
func (w *PDFWriter) ReserveObject() int {
	objNum := w.nextObjNum
	w.nextObjNum++
	return objNum
}

// SetObject sets or replaces an object at a specific number
func (w *PDFWriter) SetObject(objNum int, content []byte) {
	w.objects[objNum] = &PDFObject{Number: objNum, Content: content}
	if objNum >= w.nextObjNum {
		w.nextObjNum = objNum + 1
	}
}

// SetRoot sets the root (catalog) object reference
func (w *PDFWriter) SetRoot(objNum int) {
	w.rootRef = fmt.Sprintf("%d 0 R", objNum)
}

// SetInfo sets the info dictionary object reference
func (w *PDFWriter) SetInfo(objNum int) {
	w.infoRef = fmt.Sprintf("%d 0 R", objNum)
}

// GetObject returns the content (or stream data) of an object
func (w *PDFWriter) GetObject(objNum int) ([]byte, error) {
	obj, ok := w.objects[objNum]
	if !ok {
		return nil, fmt.Errorf("object %d not found", objNum)
	}
	if obj.Content != nil {
		return obj.Content, nil
	}
	if obj.Stream != nil {
		return obj.Stream, nil
	}
	return nil, fmt.Errorf("object %d has no content", objNum)
}

// Write writes the complete PDF. Output is byte-for-byte reproducible for
// the same sequence of calls.
func (w *PDFWriter) Write(out io.Writer) error {
	if w.rootRef == "" {
		return fmt.Errorf("no root object set")
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%%PDF-%s\n", w.pdfVersion))
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A}) // Binary marker

	positions := writeObjects(&buf, w.objects)

	rows := make([]xrefRow, 0, w.nextObjNum)
	for num := 1; num < w.nextObjNum; num++ {
		if pos, ok := positions[num]; ok {
			rows = append(rows, xrefRow{Num: num, Type: 1, Field2: pos})
		} else {
			rows = append(rows, xrefRow{Num: num, Type: 0, Field3: 1})
		}
	}

	tr := trailerFields{Size: w.nextObjNum, Root: w.rootRef, Info: w.infoRef}
	if len(w.fileID) > 0 {
		hexID := fmt.Sprintf("%X", w.fileID)
		tr.ID = fmt.Sprintf("[<%s><%s>]", hexID, hexID)
	}

	var xrefPos int64
	var err error
	if w.useXRefStream {
		xrefPos, err = writeXRefStream(&buf, w.nextObjNum, rows, true, tr)
		if err != nil {
			return fmt.Errorf("failed to write xref stream: %w", err)
		}
	} else {
		xrefPos = writeXRefTable(&buf, rows, true, tr)
	}

	buf.WriteString(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefPos))

	_, err = out.Write(buf.Bytes())
	return err
}

// Bytes returns the PDF as a byte slice
func (w *PDFWriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newStreamObject(objNum int, dict Dictionary, data []byte, compress bool) *PDFObject {
	if dict == nil {
		dict = Dictionary{}
	}
	streamData := data
	if compress && len(data) > 0 {
		streamData = deflate(data)
		dict["Filter"] = "/FlateDecode"
	}
	dict["Length"] = len(streamData)

	return &PDFObject{Number: objNum, Dict: dict, Stream: streamData}
}

// writeObjects writes objects in ascending order and returns their offsets
// relative to the start of buf
func writeObjects(buf *bytes.Buffer, objects map[int]*PDFObject) map[int]int64 {
	nums := make([]int, 0, len(objects))
	for num := range objects {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	positions := make(map[int]int64, len(nums))
	for _, num := range nums {
		obj := objects[num]
		positions[num] = int64(buf.Len())

		buf.WriteString(fmt.Sprintf("%d %d obj\n", num, obj.Generation))
		if obj.Stream != nil {
			buf.Write(FormatDictionary(obj.Dict))
			buf.WriteString("\nstream\n")
			buf.Write(obj.Stream)
			buf.WriteString("\nendstream")
		} else {
			buf.Write(obj.Content)
		}
		buf.WriteString("\nendobj\n")
	}
	return positions
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// FormatDictionary renders dict with keys in sorted order
func FormatDictionary(dict Dictionary) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<")

	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.TrimPrefix(keys[i], "/") < strings.TrimPrefix(keys[j], "/")
	})

	for _, key := range keys {
		value := dict[key]
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		buf.WriteString(key)
		buf.WriteString(" ")
		buf.WriteString(FormatValue(value))
		buf.WriteString(" ")
	}

	buf.WriteString(">>")
	return buf.Bytes()
}

// FormatValue renders a Go value as PDF syntax. Strings starting with "/" are
// names and strings ending in " R" are references; other strings become
// literal strings.
func FormatValue(value any) string {
	switch v := value.(type) {
	case Raw:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return FormatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case string:
		if strings.HasPrefix(v, "/") || strings.HasSuffix(v, " R") {
			return v
		}
		return "(" + EscapeString([]byte(v)) + ")"
	case []byte:
		return "<" + fmt.Sprintf("%X", v) + ">"
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, FormatValue(item))
		}
		return "[" + strings.Join(items, " ") + "]"
	case []float64:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, FormatNumber(item))
		}
		return "[" + strings.Join(items, " ") + "]"
	case Dictionary:
		return string(FormatDictionary(v))
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatNumber renders n with at most four decimals and no trailing zeros
func FormatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	r := math.Round(n*1e4) / 1e4
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// EscapeString escapes bytes for use inside a PDF literal string. Bytes
// outside printable ASCII are written as octal escapes.
func EscapeString(s []byte) string {
	var result strings.Builder
	for _, c := range s {
		switch c {
		case '(':
			result.WriteString("\\(")
		case ')':
			result.WriteString("\\)")
		case '\\':
			result.WriteString("\\\\")
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		default:
			if c < 0x20 || c > 0x7E {
				fmt.Fprintf(&result, "\\%03o", c)
			} else {
				result.WriteByte(c)
			}
		}
	}
	return result.String()
}
