package write

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfburn/core/parse"
)

func appendOverlay(t *testing.T, original []byte) []byte {
	t.Helper()

	doc, err := parse.Open(original, nil)
	if err != nil {
		t.Fatalf("parse.Open failed: %v", err)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	page := pages[0]

	w := NewIncrementalWriter(doc)
	overlay := w.AddStreamObject(Dictionary{}, NewContentStream().Rectangle(10, 10, 50, 50).Fill().Bytes(), true)

	contents := parse.DictValue(page.Dict, "/Contents")
	dict, err := parse.SetDictValue(page.Dict, "/Contents", fmt.Sprintf("[%s %d 0 R]", contents, overlay))
	if err != nil {
		t.Fatalf("SetDictValue failed: %v", err)
	}
	if err := w.ReplaceObject(page.Ref.Num, []byte(dict)); err != nil {
		t.Fatalf("ReplaceObject failed: %v", err)
	}

	out, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return out
}

func TestIncrementalWriter_AppendsUpdate(t *testing.T) {
	for _, xrefStream := range []bool{false, true} {
		original := buildSimplePDF(t, xrefStream)
		out := appendOverlay(t, original)

		if !bytes.HasPrefix(out, original) {
			t.Fatal("Original bytes must be preserved as a prefix")
		}

		doc, err := parse.Open(out, nil)
		if err != nil {
			t.Fatalf("parse.Open of update failed: %v", err)
		}
		tr := doc.Trailer()
		if tr.Revisions != 2 {
			t.Errorf("Expected 2 revisions, got %d", tr.Revisions)
		}
		if tr.XRefStream != xrefStream {
			t.Errorf("Update should use the same xref kind as the original (stream %v)", xrefStream)
		}
		if tr.Recovered {
			t.Error("Update should not need xref recovery")
		}

		pages, err := doc.Pages()
		if err != nil {
			t.Fatalf("Pages failed: %v", err)
		}
		refs := parse.ParseRefArray(parse.DictValue(pages[0].Dict, "/Contents"))
		if len(refs) != 2 {
			t.Fatalf("Expected 2 content streams, got %v", refs)
		}

		obj, err := doc.Object(refs[1].Num)
		if err != nil {
			t.Fatalf("Object failed: %v", err)
		}
		data, err := doc.StreamData(obj)
		if err != nil {
			t.Fatalf("StreamData failed: %v", err)
		}
		if string(data) != "10 10 50 50 re\nf\n" {
			t.Errorf("Unexpected overlay content %q", data)
		}
	}
}

func TestIncrementalWriter_CarriesTrailer(t *testing.T) {
	b := NewSimplePDFBuilder()
	b.Writer().SetFileID([]byte{0xAB, 0xCD})
	b.Writer().SetMetadata(&Metadata{Title: "Doc"})
	page := b.AddPage(PageSizeA4)
	b.FinalizePage(page)
	original, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	out := appendOverlay(t, original)
	tail := string(out[len(original):])
	for _, want := range []string{"/ID [<ABCD><ABCD>]", "/Info 1 0 R", "/Prev "} {
		if !strings.Contains(tail, want) {
			t.Errorf("Update trailer missing %q:\n%s", want, tail)
		}
	}

	doc, err := parse.Open(out, nil)
	if err != nil {
		t.Fatalf("parse.Open failed: %v", err)
	}
	if doc.Trailer().Info.Num != 1 {
		t.Errorf("Expected /Info 1 0 R, got %s", doc.Trailer().Info)
	}
}

func TestIncrementalWriter_Deterministic(t *testing.T) {
	original := buildSimplePDF(t, false)
	if !bytes.Equal(appendOverlay(t, original), appendOverlay(t, original)) {
		t.Error("Expected identical updates for identical input")
	}
}

func TestIncrementalWriter_RecoveredDocument(t *testing.T) {
	original := buildSimplePDF(t, false)
	idx := bytes.LastIndex(original, []byte("startxref"))
	broken := append(append([]byte{}, original[:idx]...), []byte("startxref\n999999\n%%EOF")...)

	out := appendOverlay(t, broken)

	doc, err := parse.Open(out, nil)
	if err != nil {
		t.Fatalf("parse.Open failed: %v", err)
	}
	if doc.Trailer().Recovered {
		t.Error("Full xref written after recovery should be readable without scanning")
	}
	if _, err := doc.Pages(); err != nil {
		t.Errorf("Pages failed: %v", err)
	}
}

func TestIncrementalWriter_ReplaceUnknownObject(t *testing.T) {
	doc, err := parse.Open(buildSimplePDF(t, false), nil)
	if err != nil {
		t.Fatalf("parse.Open failed: %v", err)
	}
	w := NewIncrementalWriter(doc)
	if err := w.ReplaceObject(999, []byte("<<>>")); err == nil {
		t.Error("Expected error replacing a missing object")
	}
}
