package volume

import (
	"image"
	"testing"
)

func grayPage(w, h int, fill uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = fill
	}
	return g
}

func TestNewRejectsBadPageCount(t *testing.T) {
	pages := []*image.Gray{grayPage(4, 4, 0), grayPage(4, 4, 0)}
	if _, err := New(pages, 3); err == nil {
		t.Error("expected error for 2 pages with 3 channels")
	}
	if _, err := New(nil, 1); err == nil {
		t.Error("expected error for empty stack")
	}
	if _, err := New(pages, 0); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestNewRejectsMixedBounds(t *testing.T) {
	pages := []*image.Gray{grayPage(4, 4, 0), grayPage(8, 8, 0)}
	if _, err := New(pages, 1); err == nil {
		t.Error("expected error for mismatched page bounds")
	}
}

func TestSliceIndexing(t *testing.T) {
	// Two frames of three channels; fill value encodes the page index.
	pages := make([]*image.Gray, 6)
	for i := range pages {
		pages[i] = grayPage(4, 4, uint8(i))
	}
	v, err := New(pages, 3)
	if err != nil {
		t.Fatal(err)
	}

	if v.Frames() != 2 || v.Channels() != 3 {
		t.Fatalf("got %d frames, %d channels", v.Frames(), v.Channels())
	}

	// Frame f, channel c maps to page f*nchannels+c.
	if got := v.Slice(1, 2).Pix[0]; got != 5 {
		t.Errorf("Slice(1, 2) returned page %d, want 5", got)
	}
	if got := v.Slice(0, 0).Pix[0]; got != 0 {
		t.Errorf("Slice(0, 0) returned page %d, want 0", got)
	}
}

func TestSliceOutOfRange(t *testing.T) {
	pages := []*image.Gray{grayPage(4, 4, 0), grayPage(4, 4, 0)}
	v, err := New(pages, 2)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 2}} {
		if v.Slice(tc[0], tc[1]) != nil {
			t.Errorf("Slice(%d, %d) should be nil", tc[0], tc[1])
		}
	}
}
