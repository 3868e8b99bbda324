// Package colormap provides color schemes for slice and velocity rendering.
package colormap

import (
	"image/color"
	"strings"
)

// Colormap maps normalized values [0, 1] to colors.
type Colormap interface {
	At(t float64) color.Color
}

// LinearColormap is a linear interpolation colormap over anchor colors.
type LinearColormap struct {
	colors []color.RGBA
}

// At returns the color at position t (0-1).
func (c LinearColormap) At(t float64) color.Color {
	if t <= 0 {
		return c.colors[0]
	}
	if t >= 1 {
		return c.colors[len(c.colors)-1]
	}

	idx := t * float64(len(c.colors)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(c.colors) {
		upper = len(c.colors) - 1
	}

	frac := idx - float64(lower)
	return interpolate(c.colors[lower], c.colors[upper], frac)
}

// Reversed returns the colormap with its anchor order flipped.
func (c LinearColormap) Reversed() LinearColormap {
	rev := make([]color.RGBA, len(c.colors))
	for i, col := range c.colors {
		rev[len(c.colors)-1-i] = col
	}
	return LinearColormap{colors: rev}
}

func interpolate(c1, c2 color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c1.R) + t*(float64(c2.R)-float64(c1.R))),
		G: uint8(float64(c1.G) + t*(float64(c2.G)-float64(c1.G))),
		B: uint8(float64(c1.B) + t*(float64(c2.B)-float64(c1.B))),
		A: 255,
	}
}

// Greys is a black-to-white grayscale ramp.
var Greys = LinearColormap{
	colors: []color.RGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
	},
}

// Greens is a white-to-dark-green ramp (matplotlib Greens).
var Greens = LinearColormap{
	colors: []color.RGBA{
		{247, 252, 245, 255},
		{199, 233, 192, 255},
		{116, 196, 118, 255},
		{35, 139, 69, 255},
		{0, 68, 27, 255},
	},
}

// Autumn ramps red to yellow; its reverse is used for velocity coloring.
var Autumn = LinearColormap{
	colors: []color.RGBA{
		{255, 0, 0, 255},
		{255, 128, 0, 255},
		{255, 255, 0, 255},
	},
}

// Viridis colormap (matplotlib viridis).
var Viridis = LinearColormap{
	colors: []color.RGBA{
		{68, 1, 84, 255},
		{72, 35, 116, 255},
		{64, 67, 135, 255},
		{52, 94, 141, 255},
		{41, 120, 142, 255},
		{32, 144, 140, 255},
		{34, 167, 132, 255},
		{68, 190, 112, 255},
		{121, 209, 81, 255},
		{189, 222, 38, 255},
		{253, 231, 37, 255},
	},
}

var byName = map[string]LinearColormap{
	"greys":   Greys,
	"greens":  Greens,
	"autumn":  Autumn,
	"viridis": Viridis,
}

// ByName looks up a colormap by its lowercase name. A "_r" suffix selects
// the reversed variant, matching the naming used in microscopy tooling
// (e.g. "greys_r", "autumn_r"). Unknown names fall back to reversed greys.
func ByName(name string) Colormap {
	key := strings.ToLower(name)
	reversed := strings.HasSuffix(key, "_r")
	key = strings.TrimSuffix(key, "_r")

	cm, ok := byName[key]
	if !ok {
		cm = Greys
		reversed = true
	}
	if reversed {
		return cm.Reversed()
	}
	return cm
}

// Names returns the recognized base colormap names.
func Names() []string {
	return []string{"greys", "greens", "autumn", "viridis"}
}
