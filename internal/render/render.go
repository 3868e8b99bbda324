// Package render composes the displayed frame: the colormapped volume
// slice with the track polyline, markers, labels and the freehand
// boundary drawn on top using fogleman/gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	lru "github.com/hashicorp/golang-lru/v2"

	"track-viewer/internal/trackstore"
	"track-viewer/pkg/colormap"
	"track-viewer/pkg/geometry"
)

// Config contains renderer settings.
type Config struct {
	// Colormap applied to the grayscale slice.
	Colormap string

	// MaxVelocity saturates the velocity coloring of the track line.
	MaxVelocity float64

	// LabelSize is the font size of spot labels in pixels.
	LabelSize float64

	// LabelColor names the spot label color ("white", "yellow",
	// "#RRGGBB", ...). Unrecognized names fall back to white.
	LabelColor string

	// CacheSize bounds the colormapped-slice cache (entries).
	CacheSize int
}

// Label is a text annotation anchored at an image coordinate.
type Label struct {
	Pos  geometry.Point2D
	Text string
}

// Overlay is everything drawn on top of the slice for one frame.
type Overlay struct {
	// Track is the frame-ordered polyline of the selected track, with
	// Velocities coloring each vertex. Both may be empty.
	Track      []trackstore.TrackPoint
	Velocities []float64

	// Current marks the selected track's spot at the displayed frame.
	Current *geometry.Point2D

	// Labels annotate neighbor query results.
	Labels []Label

	// Boundary is the freehand region outline; Closed draws it as a
	// filled loop instead of an open point chain.
	Boundary       []geometry.Point2D
	BoundaryClosed bool
}

type sliceKey struct {
	frame, channel int
	cmap           string
}

// Renderer composes frames. Colormapped base slices are cached because
// frame stepping revisits them constantly while the overlay changes.
type Renderer struct {
	cfg        Config
	cmap       colormap.Colormap
	vcmap      colormap.Colormap
	labelColor color.Color
	slices     *lru.Cache[sliceKey, *image.RGBA]
}

// New creates a renderer.
func New(cfg Config) (*Renderer, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.MaxVelocity <= 0 {
		cfg.MaxVelocity = 10
	}
	slices, err := lru.New[sliceKey, *image.RGBA](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Renderer{
		cfg:        cfg,
		cmap:       colormap.ByName(cfg.Colormap),
		vcmap:      colormap.Autumn.Reversed(),
		labelColor: ParseColor(cfg.LabelColor),
		slices:     slices,
	}, nil
}

// SetColormap switches the slice colormap and invalidates nothing: the
// cache is keyed by colormap name, so stale entries age out.
func (r *Renderer) SetColormap(name string) {
	r.cfg.Colormap = name
	r.cmap = colormap.ByName(name)
}

// Frame renders the slice for (frame, channel) with the overlay on top.
// A nil slice yields a black canvas of the given fallback size.
func (r *Renderer) Frame(frame, channel int, slice *image.Gray, ov Overlay) image.Image {
	base := r.base(frame, channel, slice)

	dc := gg.NewContextForImage(base)
	r.drawTrack(dc, ov)
	r.drawLabels(dc, ov.Labels)
	r.drawBoundary(dc, ov)
	return dc.Image()
}

func (r *Renderer) base(frame, channel int, slice *image.Gray) *image.RGBA {
	if slice == nil {
		return image.NewRGBA(image.Rect(0, 0, 512, 512))
	}

	key := sliceKey{frame, channel, r.cfg.Colormap}
	if img, ok := r.slices.Get(key); ok {
		return img
	}

	b := slice.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Map the 256 gray levels through the colormap once, then index.
	var table [256]color.RGBA
	for i := 0; i < 256; i++ {
		cr, cg, cb, ca := r.cmap.At(float64(i) / 255).RGBA()
		table[i] = color.RGBA{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)}
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			img.SetRGBA(x, y, table[slice.GrayAt(b.Min.X+x, b.Min.Y+y).Y])
		}
	}

	r.slices.Add(key, img)
	return img
}

// drawTrack draws the selected track as velocity-colored segments with a
// ring marker on the current spot.
func (r *Renderer) drawTrack(dc *gg.Context, ov Overlay) {
	pts := ov.Track
	if len(pts) >= 2 {
		dc.SetLineWidth(1.5)
		for i := 1; i < len(pts); i++ {
			v := 0.0
			if i < len(ov.Velocities) {
				v = ov.Velocities[i] / r.cfg.MaxVelocity
			}
			if v > 1 {
				v = 1
			}
			dc.SetColor(r.vcmap.At(v))
			dc.DrawLine(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
			dc.Stroke()
		}
	}

	if ov.Current != nil {
		dc.SetRGB(0, 1, 1)
		dc.SetLineWidth(1.5)
		dc.DrawCircle(ov.Current.X, ov.Current.Y, 6)
		dc.Stroke()
	}
}

func (r *Renderer) drawLabels(dc *gg.Context, labels []Label) {
	if len(labels) == 0 {
		return
	}
	dc.SetColor(r.labelColor)
	for _, l := range labels {
		dc.DrawStringAnchored(l.Text, l.Pos.X, l.Pos.Y-r.cfg.LabelSize, 0.5, 0)
	}
}

func (r *Renderer) drawBoundary(dc *gg.Context, ov Overlay) {
	pts := ov.Boundary
	if len(pts) == 0 {
		return
	}

	dc.SetRGB(1, 0.5, 0)
	for _, p := range pts {
		dc.DrawCircle(p.X, p.Y, 2)
		dc.Fill()
	}

	if len(pts) < 2 {
		return
	}
	dc.SetLineWidth(1)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	if ov.BoundaryClosed {
		dc.ClosePath()
	}
	dc.Stroke()
}

// ParseColor resolves a configured color name or "#RRGGBB" value.
// Unrecognized input yields white.
func ParseColor(name string) color.Color {
	switch strings.ToLower(name) {
	case "", "white":
		return color.RGBA{255, 255, 255, 255}
	case "black":
		return color.RGBA{0, 0, 0, 255}
	case "red":
		return color.RGBA{255, 0, 0, 255}
	case "green":
		return color.RGBA{0, 255, 0, 255}
	case "blue":
		return color.RGBA{0, 0, 255, 255}
	case "yellow":
		return color.RGBA{255, 255, 0, 255}
	case "cyan":
		return color.RGBA{0, 255, 255, 255}
	case "magenta":
		return color.RGBA{255, 0, 255, 255}
	case "orange":
		return color.RGBA{255, 165, 0, 255}
	case "gray", "grey":
		return color.RGBA{128, 128, 128, 255}
	}

	if len(name) == 7 && name[0] == '#' {
		var cr, cg, cb uint8
		if _, err := fmt.Sscanf(name[1:], "%02x%02x%02x", &cr, &cg, &cb); err == nil {
			return color.RGBA{cr, cg, cb, 255}
		}
	}
	return color.RGBA{255, 255, 255, 255}
}

// SavePNG writes an image to disk, used for region snapshots.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}
