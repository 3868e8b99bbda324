package volume

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	_ "golang.org/x/image/tiff"
)

// Load reads a multi-page TIFF stack through OpenCV and de-interleaves
// it into nchannels channels. Each page is scaled to 8-bit using a
// shared display range of [min, 0.8*max] over the whole stack (the
// saturation convention of the source data), unless vmin < vmax
// overrides it.
func Load(path string, nchannels int, vmin, vmax float64) (*Volume, error) {
	mats := gocv.IMReadMulti(path, gocv.IMReadGrayScale)
	if len(mats) == 0 {
		return nil, fmt.Errorf("volume: cannot read %s", path)
	}
	defer func() {
		for i := range mats {
			mats[i].Close()
		}
	}()

	if vmin >= vmax {
		vmin, vmax = stackRange(mats)
		vmax *= 0.8
	}
	if vmax <= vmin {
		vmax = vmin + 1
	}

	alpha := 255.0 / (vmax - vmin)
	beta := -vmin * alpha

	pages := make([]*image.Gray, 0, len(mats))
	for i := range mats {
		scaled := gocv.NewMat()
		mats[i].ConvertToWithParams(&scaled, gocv.MatTypeCV8U, float32(alpha), float32(beta))

		img, err := scaled.ToImage()
		scaled.Close()
		if err != nil {
			return nil, fmt.Errorf("volume: page %d: %w", i, err)
		}
		pages = append(pages, toGray(img))
	}

	v, err := New(pages, nchannels)
	if err != nil {
		return nil, err
	}
	v.vmin, v.vmax = vmin, vmax
	return v, nil
}

// stackRange finds the global min/max over every page.
func stackRange(mats []gocv.Mat) (float64, float64) {
	mins := make([]float64, 0, len(mats))
	maxs := make([]float64, 0, len(mats))
	for i := range mats {
		lo, hi, _, _ := gocv.MinMaxLoc(mats[i])
		mins = append(mins, float64(lo))
		maxs = append(maxs, float64(hi))
	}
	return floats.Min(mins), floats.Max(maxs)
}

// LoadDir reads a directory of per-frame image files (TIFF or PNG, one
// page per file, lexical order) as a single-range 8-bit stack. This is
// the fallback for exports that split the stack into frames.
func LoadDir(dir string, nchannels int) (*Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".tif", ".tiff", ".png":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("volume: no image pages in %s", dir)
	}
	sort.Strings(names)

	pages := make([]*image.Gray, 0, len(names))
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("volume: decoding %s: %w", name, err)
		}
		pages = append(pages, toGray(img))
	}

	return New(pages, nchannels)
}

// toGray converts any decoded image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
