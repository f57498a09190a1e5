package font

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfburn/core/write"
	"github.com/benedoc-inc/pdfburn/types"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r
}

func TestResolve_Table(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		style       Style
		want        string
		substituted bool
	}{
		{Style{}, "Helvetica", false},
		{Style{Family: "Inter", Bold: true}, "Helvetica-Bold", false},
		{Style{Family: "Inter", Italic: true}, "Helvetica-Oblique", false},
		{Style{Family: "Helvetica", Bold: true, Italic: true}, "Helvetica-BoldOblique", false},
		{Style{Family: "Courier"}, "Courier", false},
		{Style{Family: "Courier", Bold: true}, "Courier-Bold", false},
		{Style{Family: "Courier", Italic: true}, "Courier", true},
		{Style{Family: "Courier", Bold: true, Italic: true}, "Courier-Bold", true},
		{Style{Family: "Roboto"}, "Times-Roman", false},
		{Style{Family: "Arial", Bold: true, Italic: true}, "Times-BoldItalic", false},
		{Style{Family: "times  new ROMAN", Italic: true}, "Times-Italic", false},
		{Style{Family: "Comic Sans"}, "Times-Roman", true},
		{Style{Family: "Comic Sans", Bold: true}, "Times-Bold", true},
	}
	for _, tt := range tests {
		res := r.Resolve(tt.style)
		if res.Face.Name() != tt.want {
			t.Errorf("Resolve(%+v) = %s, want %s", tt.style, res.Face.Name(), tt.want)
		}
		if res.Substituted != tt.substituted {
			t.Errorf("Resolve(%+v) substituted = %v, want %v", tt.style, res.Substituted, tt.substituted)
		}
	}
}

func TestResolve_NilRegistry(t *testing.T) {
	var r *Registry
	if got := r.Resolve(Style{Family: "Go"}).Face.Name(); got != "Times-Roman" {
		t.Errorf("Expected serif fallback without registry, got %s", got)
	}
}

func TestResolve_GoFonts(t *testing.T) {
	r := newRegistry(t)

	res := r.Resolve(Style{Family: "Go", Bold: true})
	if res.Substituted {
		t.Error("Go Bold should be available")
	}
	if !strings.Contains(res.Face.Name(), "Bold") {
		t.Errorf("Expected a bold Go face, got %s", res.Face.Name())
	}

	mono := r.Resolve(Style{Family: "Go Mono"}).Face
	encoded, _ := mono.Encode("iiii")
	wide, _ := mono.Encode("MMMM")
	if math.Abs(mono.Width(encoded, 10)-mono.Width(wide, 10)) > 1e-9 {
		t.Error("Go Mono should be fixed pitch")
	}
}

func TestStandardWidths(t *testing.T) {
	r := newRegistry(t)

	helv := r.Resolve(Style{Family: "Helvetica"}).Face
	encoded, replaced := helv.Encode("Hello")
	if replaced != 0 {
		t.Errorf("Unexpected replacements: %d", replaced)
	}
	// H 722 + e 556 + l 222 + l 222 + o 556
	if got := helv.Width(encoded, 10); math.Abs(got-22.78) > 1e-9 {
		t.Errorf("Helvetica width = %v, want 22.78", got)
	}

	courier := r.Resolve(Style{Family: "Courier"}).Face
	encoded, _ = courier.Encode("abc")
	if got := courier.Width(encoded, 12); math.Abs(got-21.6) > 1e-9 {
		t.Errorf("Courier width = %v, want 21.6", got)
	}

	// accented letters measure as their base letter
	e, _ := helv.Encode("e")
	eAcute, _ := helv.Encode("é")
	if helv.Width(e, 10) != helv.Width(eAcute, 10) {
		t.Error("é should measure like e")
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	encoded, replaced := encodeWinAnsi("café €5\t→")
	want := []byte{'c', 'a', 'f', 0xE9, ' ', 0x80, '5', ' ', '?'}
	if string(encoded) != string(want) {
		t.Errorf("encodeWinAnsi = %v, want %v", encoded, want)
	}
	if replaced != 1 {
		t.Errorf("Expected 1 replacement, got %d", replaced)
	}
}

func TestEmbed(t *testing.T) {
	r := newRegistry(t)
	w := write.NewPDFWriter()

	std := r.Resolve(Style{Family: "Times"}).Face
	num := std.Embed(w)
	content, err := w.GetObject(num)
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if !strings.Contains(string(content), "/BaseFont /Times-Roman") {
		t.Errorf("Unexpected font dictionary %q", content)
	}

	tt := r.Resolve(Style{Family: "Go"}).Face
	num = tt.Embed(w)
	content, err = w.GetObject(num)
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	for _, want := range []string{"/Subtype /TrueType", "/FirstChar 32", "/LastChar 255", "/FontDescriptor "} {
		if !strings.Contains(string(content), want) {
			t.Errorf("TrueType font dictionary missing %q: %s", want, content)
		}
	}
}

func TestRegister_Invalid(t *testing.T) {
	r := newRegistry(t)

	err := r.Register("Broken", Faces{Regular: []byte("not a font")})
	if !errors.Is(err, types.ErrFontError) {
		t.Errorf("Expected FONT_ERROR, got %v", err)
	}

	err = r.Register("Empty", Faces{})
	if code, _ := types.CodeOf(err); code != types.ErrCodeFontError {
		t.Errorf("Expected FONT_ERROR for missing regular face, got %v", err)
	}

	if err := r.RegisterFiles("Missing", Files{Regular: "/nonexistent/font.ttf"}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRegister_Degrades(t *testing.T) {
	r := newRegistry(t)
	builtin, _ := goFamilies()

	if err := r.Register("Brand", Faces{Regular: goregularData(builtin)}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	res := r.Resolve(Style{Family: "brand", Bold: true})
	if !res.Substituted {
		t.Error("Missing bold face should be reported as substituted")
	}
	if res.Face.Name() != r.Resolve(Style{Family: "Go"}).Face.Name() {
		t.Errorf("Expected regular face, got %s", res.Face.Name())
	}
}

func goregularData(families map[string]*family) []byte {
	return families["go"].regular.(*trueTypeFace).data
}
