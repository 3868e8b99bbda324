package render

import (
	"image"
	"image/color"
	"testing"

	"track-viewer/internal/trackstore"
	"track-viewer/pkg/geometry"
)

func gradientSlice(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(x * 255 / (w - 1))})
		}
	}
	return g
}

func TestFrameAppliesColormap(t *testing.T) {
	r, err := New(Config{Colormap: "greys_r", MaxVelocity: 10, LabelSize: 6})
	if err != nil {
		t.Fatal(err)
	}

	img := r.Frame(0, 0, gradientSlice(64, 64), Overlay{})

	// greys_r maps low intensity to bright and high to dark.
	left, _, _, _ := img.At(0, 32).RGBA()
	right, _, _, _ := img.At(63, 32).RGBA()
	if left <= right {
		t.Errorf("reversed greys should invert the gradient: left %d right %d", left, right)
	}
}

func TestFrameNilSlice(t *testing.T) {
	r, err := New(Config{Colormap: "greys_r"})
	if err != nil {
		t.Fatal(err)
	}
	if img := r.Frame(0, 0, nil, Overlay{}); img == nil {
		t.Fatal("nil slice must still yield a canvas")
	}
}

func TestBaseCacheReused(t *testing.T) {
	r, err := New(Config{Colormap: "greys_r"})
	if err != nil {
		t.Fatal(err)
	}
	slice := gradientSlice(16, 16)

	a := r.base(3, 1, slice)
	b := r.base(3, 1, slice)
	if a != b {
		t.Error("second lookup should hit the cache")
	}

	r.SetColormap("greens")
	c := r.base(3, 1, slice)
	if a == c {
		t.Error("colormap change must produce a fresh base")
	}
}

func TestOverlayDrawsTrack(t *testing.T) {
	r, err := New(Config{Colormap: "greys", MaxVelocity: 10})
	if err != nil {
		t.Fatal(err)
	}

	// Black slice so any overlay ink is detectable.
	slice := image.NewGray(image.Rect(0, 0, 32, 32))
	ov := Overlay{
		Track: []trackstore.TrackPoint{
			{X: 4, Y: 16, Frame: 0},
			{X: 28, Y: 16, Frame: 1},
		},
		Velocities: []float64{3, 3},
		Current:    &geometry.Point2D{X: 16, Y: 16},
	}
	img := r.Frame(0, 0, slice, ov)

	cr, cg, cb, _ := img.At(16, 16).RGBA()
	if cr == 0 && cg == 0 && cb == 0 {
		t.Error("track overlay left the midline black")
	}
}

func TestLabelsUseConfiguredColor(t *testing.T) {
	r, err := New(Config{Colormap: "greys", LabelSize: 6, LabelColor: "red"})
	if err != nil {
		t.Fatal(err)
	}

	slice := image.NewGray(image.Rect(0, 0, 64, 64))
	ov := Overlay{Labels: []Label{{Pos: geometry.Point2D{X: 32, Y: 40}, Text: "7"}}}
	img := r.Frame(0, 0, slice, ov)

	found := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr > 0xC000 && cg < 0x4000 && cb < 0x4000 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no red label ink found on the black slice")
	}
}

func TestParseColor(t *testing.T) {
	if got := ParseColor("yellow"); got != (color.RGBA{255, 255, 0, 255}) {
		t.Errorf("yellow: got %v", got)
	}
	if got := ParseColor("#2040C0"); got != (color.RGBA{0x20, 0x40, 0xC0, 255}) {
		t.Errorf("hex: got %v", got)
	}
	if got := ParseColor("no-such-color"); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("unknown names fall back to white: got %v", got)
	}
}
