package sample

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfburn/compose"
	"github.com/benedoc-inc/pdfburn/core/parse"
)

func TestDocument(t *testing.T) {
	pdf, err := Document()
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	doc, err := parse.Open(pdf, nil)
	if err != nil {
		t.Fatalf("parse.Open failed: %v", err)
	}
	pages, err := doc.Pages()
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Width() != 612 || pages[0].Height() != 792 {
		t.Fatalf("Expected one Letter page, got %+v", pages)
	}

	contents, err := doc.Object(parse.ParseRefArray(parse.DictValue(pages[0].Dict, "/Contents"))[0].Num)
	if err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	data, err := doc.StreamData(contents)
	if err != nil {
		t.Fatalf("StreamData failed: %v", err)
	}
	for _, want := range []string{
		"/F1 30 Tf\n50 672 Td\n(Non-Disclosure Agreement) Tj",
		"/F1 14 Tf\n50 612 Td\n",
		"(Sign Here:) Tj",
		"50 432 200 50 re\nS",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Missing %q in:\n%s", want, data)
		}
	}

	info, err := doc.Resolve(doc.Trailer().Info.String())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if parse.DictValue(info, "/Title") != "(Non-Disclosure Agreement)" {
		t.Errorf("Unexpected info %q", info)
	}
}

func TestDocument_Reproducible(t *testing.T) {
	first, err := Document()
	if err != nil {
		t.Fatal(err)
	}
	again, err := build()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again) {
		t.Error("Sample document must be byte-identical across builds")
	}
	if compose.Digest(first) != compose.Digest(again) {
		t.Error("Digests differ")
	}
}

func TestSignatureRect(t *testing.T) {
	r := SignatureRect()
	box := compose.Project(r, parse.LetterBox)

	for _, pair := range [][2]float64{{box.X, 50}, {box.Y, 432}, {box.W, 200}, {box.H, 50}} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Errorf("Projected box %+v does not match the placeholder", box)
			break
		}
	}
}
