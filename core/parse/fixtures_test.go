package parse

import (
	"bytes"
	"compress/zlib"
	"fmt"
)

// createSimplePDF creates a minimal valid PDF for testing
func createSimplePDF() []byte {
	var buf bytes.Buffer

	buf.WriteString("%PDF-1.7\n")
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A})

	obj1Offset := buf.Len()
	buf.WriteString("1 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n")

	obj2Offset := buf.Len()
	buf.WriteString("2 0 obj\n<</Type/Pages/Kids[3 0 R]/Count 1/MediaBox[0 0 612 792]>>\nendobj\n")

	obj3Offset := buf.Len()
	buf.WriteString("3 0 obj\n<</Type/Page/Parent 2 0 R/Resources<</Font<</F1 4 0 R>>>>>>\nendobj\n")

	obj4Offset := buf.Len()
	buf.WriteString("4 0 obj\n<</Type/Font/Subtype/Type1/BaseFont/Helvetica>>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString("0 5\n")
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(obj3Offset))
	buf.WriteString(formatXRefEntry(obj4Offset))

	buf.WriteString("trailer\n")
	buf.WriteString("<</Size 5/Root 1 0 R/ID[<0102><0102>]>>\n")
	buf.WriteString(fmt.Sprintf("startxref\n%d\n", xrefOffset))
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

// createIncrementalPDF creates a PDF with two revisions. The second one
// replaces the content stream and adds a font object.
func createIncrementalPDF() []byte {
	var buf bytes.Buffer

	buf.WriteString("%PDF-1.7\n")
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A})

	obj1Offset := buf.Len()
	buf.WriteString("1 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n")

	obj2Offset := buf.Len()
	buf.WriteString("2 0 obj\n<</Type/Pages/Kids[3 0 R]/Count 1>>\nendobj\n")

	obj3Offset := buf.Len()
	buf.WriteString("3 0 obj\n<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]/Contents 4 0 R>>\nendobj\n")

	obj4Offset := buf.Len()
	writeStreamObject(&buf, 4, "BT /F1 12 Tf (Hello) Tj ET")

	xref1Offset := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString("0 5\n")
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(obj3Offset))
	buf.WriteString(formatXRefEntry(obj4Offset))

	buf.WriteString("trailer\n")
	buf.WriteString("<</Size 5/Root 1 0 R/Info 9 0 R>>\n")
	buf.WriteString(fmt.Sprintf("startxref\n%d\n", xref1Offset))
	buf.WriteString("%%EOF\n")

	obj4NewOffset := buf.Len()
	writeStreamObject(&buf, 4, "BT /F1 12 Tf (Hello World!) Tj ET")

	obj5Offset := buf.Len()
	buf.WriteString("5 0 obj\n<</Type/Font/Subtype/Type1/BaseFont/Helvetica>>\nendobj\n")

	xref2Offset := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString("4 2\n")
	buf.WriteString(formatXRefEntry(obj4NewOffset))
	buf.WriteString(formatXRefEntry(obj5Offset))

	buf.WriteString("trailer\n")
	buf.WriteString(fmt.Sprintf("<</Size 6/Root 1 0 R/Prev %d>>\n", xref1Offset))
	buf.WriteString(fmt.Sprintf("startxref\n%d\n", xref2Offset))
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

// createXRefStreamPDF creates a PDF 1.5 file whose page objects live in a
// compressed object stream, indexed by a cross-reference stream.
func createXRefStreamPDF() []byte {
	return xrefStreamPDF("")
}

// xrefStreamPDF builds the object stream fixture; a non-empty length
// replaces the object stream's numeric /Length
func xrefStreamPDF(length string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	members := []string{
		"<</Type/Catalog/Pages 2 0 R>>",
		"<</Type/Pages/Kids[3 0 R]/Count 1/MediaBox[0 0 300 400]>>",
		"<</Type/Page/Parent 2 0 R/Rotate 90>>",
	}
	var header, body bytes.Buffer
	for i, m := range members {
		fmt.Fprintf(&header, "%d %d ", i+1, body.Len())
		body.WriteString(m + "\n")
	}
	payload := append(header.Bytes(), body.Bytes()...)

	objStmOffset := buf.Len()
	compressed := deflate(payload)
	if length == "" {
		length = fmt.Sprint(len(compressed))
	}
	fmt.Fprintf(&buf, "4 0 obj\n<</Type/ObjStm/N %d/First %d/Filter/FlateDecode/Length %s>>\nstream\n",
		len(members), header.Len(), length)
	buf.Write(compressed)
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := buf.Len()
	var rows bytes.Buffer
	rows.Write([]byte{0, 0, 0, 0})
	for i := range members {
		rows.Write([]byte{2, 0, 4, byte(i)})
	}
	rows.Write([]byte{1, byte(objStmOffset >> 8), byte(objStmOffset), 0})
	rows.Write([]byte{1, byte(xrefOffset >> 8), byte(xrefOffset), 0})

	fmt.Fprintf(&buf, "5 0 obj\n<</Type/XRef/Size 6/W[1 2 1]/Root 1 0 R/Length %d>>\nstream\n", rows.Len())
	buf.Write(rows.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

func writeStreamObject(buf *bytes.Buffer, num int, content string) {
	fmt.Fprintf(buf, "%d 0 obj\n<</Length %d>>\nstream\n%s\nendstream\nendobj\n", num, len(content), content)
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

func formatXRefEntry(offset int) string {
	return fmt.Sprintf("%010d 00000 n \n", offset)
}

// createCyclicLengthPDF creates a PDF whose stream lengths cannot be
// resolved: object 4 names itself as its /Length, objects 5 and 6 name
// each other.
func createCyclicLengthPDF() []byte {
	var buf bytes.Buffer

	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, 7)

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n")

	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<</Type/Pages/Kids[3 0 R]/Count 1/MediaBox[0 0 612 792]>>\nendobj\n")

	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<</Type/Page/Parent 2 0 R/Contents[4 0 R 5 0 R 6 0 R]>>\nendobj\n")

	for _, s := range []struct {
		num    int
		length string
		data   string
	}{
		{4, "4 0 R", "BT (self) Tj ET"},
		{5, "6 0 R", "BT (five) Tj ET"},
		{6, "5 0 R", "BT (six) Tj ET"},
	} {
		offsets[s.num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<</Length %s>>\nstream\n%s\nendstream\nendobj\n", s.num, s.length, s.data)
	}

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 7\n0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		buf.WriteString(formatXRefEntry(off))
	}
	buf.WriteString("trailer\n<</Size 7/Root 1 0 R>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

// createObjStmSelfLengthPDF is createXRefStreamPDF with the object
// stream's /Length pointing at one of its own members.
func createObjStmSelfLengthPDF() []byte {
	return xrefStreamPDF("2 0 R")
}
