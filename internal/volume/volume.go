// Package volume provides the multi-channel time-lapse image stack that
// track annotations are displayed over. Pages are interleaved by channel:
// page p belongs to frame p/nchannels, channel p%nchannels.
package volume

import (
	"fmt"
	"image"
)

// Volume is a de-interleaved stack of grayscale pages.
type Volume struct {
	pages     []*image.Gray
	nchannels int
	width     int
	height    int

	// vmin/vmax are the display range the pages were scaled with,
	// kept for reporting.
	vmin, vmax float64
}

// New builds a Volume from already-decoded grayscale pages. The page
// count must be a multiple of nchannels.
func New(pages []*image.Gray, nchannels int) (*Volume, error) {
	if nchannels < 1 {
		return nil, fmt.Errorf("volume: nchannels must be >= 1, got %d", nchannels)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("volume: no pages")
	}
	if len(pages)%nchannels != 0 {
		return nil, fmt.Errorf("volume: %d pages not divisible by %d channels",
			len(pages), nchannels)
	}

	b := pages[0].Bounds()
	for i, p := range pages {
		if p.Bounds() != b {
			return nil, fmt.Errorf("volume: page %d has bounds %v, expected %v",
				i, p.Bounds(), b)
		}
	}

	return &Volume{
		pages:     pages,
		nchannels: nchannels,
		width:     b.Dx(),
		height:    b.Dy(),
	}, nil
}

// Frames returns the number of time frames.
func (v *Volume) Frames() int { return len(v.pages) / v.nchannels }

// Channels returns the number of interleaved channels.
func (v *Volume) Channels() int { return v.nchannels }

// Width returns the page width in pixels.
func (v *Volume) Width() int { return v.width }

// Height returns the page height in pixels.
func (v *Volume) Height() int { return v.height }

// DisplayRange returns the intensity range the pages were scaled with.
func (v *Volume) DisplayRange() (min, max float64) { return v.vmin, v.vmax }

// Slice returns the page for the given frame and channel, or nil when
// either index is out of range.
func (v *Volume) Slice(frame, channel int) *image.Gray {
	if frame < 0 || frame >= v.Frames() || channel < 0 || channel >= v.nchannels {
		return nil
	}
	return v.pages[frame*v.nchannels+channel]
}
