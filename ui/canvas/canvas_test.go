package canvas

import (
	"testing"

	"fyne.io/fyne/v2"
)

func TestCenterOffset(t *testing.T) {
	view := fyne.NewSize(200, 100)

	// Image point (300, 200) at zoom 1 centers to (300-100, 200-50).
	got := centerOffset(300, 200, 1.0, view)
	if got.X != 200 || got.Y != 150 {
		t.Errorf("unexpected offset: %+v", got)
	}

	// Zoom scales the image coordinate before centering.
	got = centerOffset(300, 200, 2.0, view)
	if got.X != 500 || got.Y != 350 {
		t.Errorf("unexpected zoomed offset: %+v", got)
	}
}

func TestCenterOffsetClampsToOrigin(t *testing.T) {
	got := centerOffset(10, 10, 1.0, fyne.NewSize(400, 400))
	if got.X != 0 || got.Y != 0 {
		t.Errorf("near-origin centers must clamp to zero, got %+v", got)
	}
}
