package write

import (
	"strings"
	"testing"
)

func TestContentStream_Operators(t *testing.T) {
	cs := NewContentStream().
		SaveState().
		SetStrokeColorRGB(0.2, 0.2, 0.2).
		SetLineWidth(1.5).
		Line(10, 20, 30, 20).
		DrawImageAt("/Im1", 1, 2, 3, 4).
		RestoreState()

	want := "q\n0.2 0.2 0.2 RG\n1.5 w\n10 20 m\n30 20 l\nS\nq\n3 0 0 4 1 2 cm\n/Im1 Do\nQ\nQ\n"
	if cs.String() != want {
		t.Errorf("got %q\nwant %q", cs.String(), want)
	}
}

func TestContentStream_Circle(t *testing.T) {
	cs := NewContentStream().Circle(100, 100, 10)
	s := cs.String()

	if !strings.HasPrefix(s, "110 100 m\n") {
		t.Errorf("Circle should start at the rightmost point, got %q", s)
	}
	if n := strings.Count(s, " c\n"); n != 4 {
		t.Errorf("Expected 4 Bézier arcs, got %d", n)
	}
	if !strings.Contains(s, "110 105.5228 105.5228 110 100 110 c\n") {
		t.Errorf("Unexpected first arc in %q", s)
	}
	if !strings.HasSuffix(s, "h\n") {
		t.Error("Circle path should be closed")
	}
}

func TestContentStream_Text(t *testing.T) {
	cs := NewContentStream().
		BeginText().
		SetFont("/F1", 14).
		SetTextPosition(50, 700).
		ShowTextBytes([]byte("caf\xe9")).
		EndText()

	want := "BT\n/F1 14 Tf\n50 700 Td\n(caf\\351) Tj\nET\n"
	if cs.String() != want {
		t.Errorf("got %q\nwant %q", cs.String(), want)
	}
}
