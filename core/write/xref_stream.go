package write

import (
	"bytes"
	"fmt"
	"strings"
)

// xrefRow is one cross-reference entry: type 0 free, 1 offset, 2 compressed
type xrefRow struct {
	Num    int
	Type   int
	Field2 int64 // offset, or containing object stream for type 2
	Field3 int   // generation, or index within the object stream
}

// trailerFields are the trailer entries carried into every xref section
type trailerFields struct {
	Size int
	Root string
	Info string
	ID   string
	Prev int64 // zero for the first section
}

func (tr trailerFields) dictionary() Dictionary {
	dict := Dictionary{"/Size": tr.Size}
	if tr.Root != "" {
		dict["/Root"] = tr.Root
	}
	if tr.Info != "" {
		dict["/Info"] = tr.Info
	}
	if tr.ID != "" {
		dict["/ID"] = Raw(tr.ID)
	}
	if tr.Prev > 0 {
		dict["/Prev"] = tr.Prev
	}
	return dict
}

// subsections groups rows (sorted by number) into runs of consecutive numbers
func subsections(rows []xrefRow) [][]xrefRow {
	var out [][]xrefRow
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].Num == rows[j-1].Num+1 {
			j++
		}
		out = append(out, rows[i:j])
		i = j
	}
	return out
}

// writeXRefTable writes a classic xref table and trailer. When full is set the
// table starts at object 0 with the head of the free list.
func writeXRefTable(buf *bytes.Buffer, rows []xrefRow, full bool, tr trailerFields) int64 {
	xrefPos := int64(buf.Len())
	buf.WriteString("xref\n")

	if full {
		rows = append([]xrefRow{{Num: 0, Type: 0, Field3: 65535}}, rows...)
	}
	for _, sub := range subsections(rows) {
		buf.WriteString(fmt.Sprintf("%d %d\n", sub[0].Num, len(sub)))
		for _, r := range sub {
			kind := "n"
			if r.Type == 0 {
				kind = "f"
			}
			buf.WriteString(fmt.Sprintf("%010d %05d %s \n", r.Field2, r.Field3, kind))
		}
	}

	buf.WriteString("trailer\n")
	buf.Write(FormatDictionary(tr.dictionary()))
	buf.WriteString("\n")
	return xrefPos
}

// writeXRefStream writes a cross-reference stream as object objNum. The
// stream's own entry is added here, as its offset is only known now. Trailer
// entries go into the stream dictionary.
// Returns the position where the xref stream object starts
func writeXRefStream(buf *bytes.Buffer, objNum int, rows []xrefRow, full bool, tr trailerFields) (int64, error) {
	xrefPos := int64(buf.Len())

	rows = append(rows, xrefRow{Num: objNum, Type: 1, Field2: xrefPos})
	if full {
		rows = append([]xrefRow{{Num: 0, Type: 0, Field3: 65535}}, rows...)
	}
	tr.Size = max(tr.Size, objNum+1)

	maxField2, maxField3 := int64(0), 0
	for _, r := range rows {
		maxField2 = max(maxField2, r.Field2)
		maxField3 = max(maxField3, r.Field3)
	}

	w1 := 1 // Type field: 1 byte (0=free, 1=in-use, 2=compressed)
	w2 := calculateBytesNeeded(maxField2)
	w3 := calculateBytesNeeded(int64(maxField3))

	streamData := make([]byte, 0, len(rows)*(w1+w2+w3))
	var index []string
	for _, sub := range subsections(rows) {
		index = append(index, fmt.Sprintf("%d %d", sub[0].Num, len(sub)))
		for _, r := range sub {
			entry := make([]byte, w1+w2+w3)
			entry[0] = byte(r.Type)
			writeBigEndian(entry[w1:], r.Field2, w2)
			writeBigEndian(entry[w1+w2:], int64(r.Field3), w3)
			streamData = append(streamData, entry...)
		}
	}

	dict := tr.dictionary()
	dict["/Type"] = "/XRef"
	dict["/W"] = []any{w1, w2, w3}
	dict["/Index"] = Raw("[" + strings.Join(index, " ") + "]")

	obj := newStreamObject(objNum, dict, streamData, true)

	buf.WriteString(fmt.Sprintf("%d 0 obj\n", objNum))
	buf.Write(FormatDictionary(obj.Dict))
	buf.WriteString("\nstream\n")
	buf.Write(obj.Stream)
	buf.WriteString("\nendstream\nendobj\n")

	return xrefPos, nil
}

// calculateBytesNeeded calculates how many bytes are needed to represent a number
func calculateBytesNeeded(n int64) int {
	if n == 0 {
		return 1
	}
	bytes := 0
	for n > 0 {
		bytes++
		n >>= 8
	}
	return bytes
}

// writeBigEndian writes a number in big-endian format to a byte slice
func writeBigEndian(dst []byte, value int64, width int) {
	for i := width - 1; i >= 0; i-- {
		dst[i] = byte(value & 0xff)
		value >>= 8
	}
}
