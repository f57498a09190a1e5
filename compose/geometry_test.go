package compose

import (
	"math"
	"testing"

	"github.com/benedoc-inc/pdfburn/core/parse"
	"github.com/benedoc-inc/pdfburn/types"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProject_VerticalFlip(t *testing.T) {
	box := Project(types.NormalizedRect{X: 0.25, Y: 0.5, W: 0.5, H: 0.1}, parse.LetterBox)

	if !approx(box.Y, 316.8) {
		t.Errorf("Expected y 316.8, got %v", box.Y)
	}
	if !approx(box.H, 79.2) {
		t.Errorf("Expected height 79.2, got %v", box.H)
	}
	if !approx(box.X, 153) || !approx(box.W, 306) {
		t.Errorf("Unexpected horizontal placement %+v", box)
	}
}

func TestProject_MediaBoxOrigin(t *testing.T) {
	media := parse.Rect{LLX: 100, LLY: 50, URX: 300, URY: 450}
	box := Project(types.NormalizedRect{X: 0, Y: 0, W: 1, H: 0.5}, media)

	want := Box{X: 100, Y: 250, W: 200, H: 200}
	if box != want {
		t.Errorf("Expected %+v, got %+v", want, box)
	}
}

func TestProject_Unclamped(t *testing.T) {
	box := Project(types.NormalizedRect{X: 1.2, Y: -0.1, W: 0.2, H: 0.2}, parse.LetterBox)
	if box.X <= 612 {
		t.Errorf("Expected box right of the page, got x=%v", box.X)
	}
	if box.Y+box.H <= 792 {
		t.Errorf("Expected box above the page, got top=%v", box.Y+box.H)
	}
}

func TestContainFit(t *testing.T) {
	tests := []struct {
		name       string
		box        Box
		imgW, imgH float64
		want       Box
	}{
		{"wide image in tall box", Box{0, 396, 306, 396}, 40, 20, Box{0, 517.5, 306, 153}},
		{"tall image in wide box", Box{10, 10, 200, 50}, 100, 200, Box{97.5, 10, 25, 50}},
		{"same aspect", Box{0, 0, 100, 50}, 200, 100, Box{0, 0, 100, 50}},
		{"empty box", Box{5, 6, 0, 50}, 10, 10, Box{X: 5, Y: 6}},
		{"empty image", Box{5, 6, 10, 10}, 0, 10, Box{X: 5, Y: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainFit(tt.box, tt.imgW, tt.imgH)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) || !approx(got.W, tt.want.W) || !approx(got.H, tt.want.H) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestContainFit_PreservesAspect(t *testing.T) {
	for _, size := range [][2]float64{{640, 480}, {100, 900}, {1, 1}, {3000, 17}} {
		fit := ContainFit(Box{0, 0, 300, 120}, size[0], size[1])
		if math.Abs(fit.W/fit.H-size[0]/size[1]) > 1e-9 {
			t.Errorf("Aspect of %v not preserved: %+v", size, fit)
		}
		if fit.W > 300+1e-9 || fit.H > 120+1e-9 {
			t.Errorf("Fit %+v exceeds box", fit)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"", Black},
		{"#000", Black},
		{"#000000", Black},
		{"#ffffff", RGB{1, 1, 1}},
		{"#FF0000", RGB{1, 0, 0}},
		{"00ff00", RGB{0, 1, 0}},
		{"#f00", RGB{1, 0, 0}},
		{"#336699", RGB{0.2, 0.4, 0.6}},
		{"#12345", Black},
		{"#gggggg", Black},
		{"red", Black},
	}

	for _, tt := range tests {
		got := ParseHex(tt.in)
		if !approx(got.R, tt.want.R) || !approx(got.G, tt.want.G) || !approx(got.B, tt.want.B) {
			t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDigest(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Digest([]byte("abc")); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
