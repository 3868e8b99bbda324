package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"track-viewer/internal/trackstore"
	"track-viewer/pkg/geometry"
)

// boundaryDraw is the freehand region state. Points accumulate while
// drawing mode is active; leaving draw mode with enough points closes
// them into a loop that RunRegion scans for contained tracks.
type boundaryDraw struct {
	active bool
	closed bool
	points []geometry.Point2D
}

// RegionResult is the outcome of a region query.
type RegionResult struct {
	// Boundary is the resampled closed outline.
	Boundary []geometry.Point2D

	// Tracks are the distinct tracks with at least one spot inside, in
	// ascending id order.
	Tracks []trackstore.TrackID

	// Path is the report file the result was written to.
	Path string
}

// SnapshotFunc renders the current view to a PNG file. Set by the UI so
// region reports can carry an image alongside the track list.
type SnapshotFunc func(path string) error

// SetSnapshotFunc installs the snapshot renderer.
func (c *Controller) SetSnapshotFunc(fn SnapshotFunc) { c.snapshot = fn }

// LastRegion returns the most recent region result, or nil.
func (c *Controller) LastRegion() *RegionResult { return c.lastRegion }

func (c *Controller) toggleDraw() {
	switch {
	case c.draw.active && len(c.draw.points) >= 3:
		// Second press with enough points finalizes the boundary.
		c.draw.active = false
		c.draw.closed = true
		c.setStatus(fmt.Sprintf("boundary closed with %d points", len(c.draw.points)))
	case c.draw.active:
		c.draw.active = false
		c.draw.points = nil
		c.setStatus("")
	default:
		c.draw = boundaryDraw{active: true}
		c.setStatus("drawing boundary: click to add points")
	}
	c.emit(EventRedraw, nil)
}

func (c *Controller) addBoundaryPoint(pos geometry.Point2D) {
	if !c.draw.active {
		return
	}
	c.draw.points = append(c.draw.points, pos)
	c.setStatus(fmt.Sprintf("boundary: %d points", len(c.draw.points)))
	c.emit(EventRedraw, nil)
}

func (c *Controller) removeBoundaryPoint() {
	if !c.draw.active || len(c.draw.points) == 0 {
		return
	}
	c.draw.points = c.draw.points[:len(c.draw.points)-1]
	c.setStatus(fmt.Sprintf("boundary: %d points", len(c.draw.points)))
	c.emit(EventRedraw, nil)
}

func (c *Controller) runRegion() {
	// A still-open boundary with enough points is finalized implicitly.
	if c.draw.active && len(c.draw.points) >= 3 {
		c.draw.active = false
		c.draw.closed = true
	}
	if !c.draw.closed {
		if c.draw.active {
			c.setStatus("boundary needs at least 3 points")
		} else {
			c.setStatus("no boundary drawn")
		}
		return
	}

	boundary := geometry.ResampleClosed(c.draw.points, c.cfg.Query.RegionSamples)
	tracks := c.store.TracksInRegion(boundary)

	result := &RegionResult{Boundary: boundary, Tracks: tracks}
	if err := c.writeRegion(result); err != nil {
		c.setStatus("region report failed: " + err.Error())
		return
	}

	c.lastRegion = result
	c.draw = boundaryDraw{}
	c.setStatus(fmt.Sprintf("%d tracks in region, wrote %s", len(tracks), result.Path))
	c.emit(EventRedraw, nil)
}

// writeRegion writes the track list next to the data file, numbering the
// reports so reruns never clobber earlier ones.
func (c *Controller) writeRegion(r *RegionResult) error {
	dir := filepath.Dir(c.dataPath)
	base := nextRegionBase(dir)
	r.Path = base + ".txt"

	var b strings.Builder
	for _, id := range r.Tracks {
		fmt.Fprintf(&b, "%d\n", id)
	}
	if err := os.WriteFile(r.Path, []byte(b.String()), 0o644); err != nil {
		return err
	}

	if c.snapshot != nil {
		if err := c.snapshot(base + ".png"); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	return nil
}

// nextRegionBase finds the first unused region_NNNN name in dir.
func nextRegionBase(dir string) string {
	for i := 0; ; i++ {
		base := filepath.Join(dir, fmt.Sprintf("region_%04d", i))
		if _, err := os.Stat(base + ".txt"); os.IsNotExist(err) {
			return base
		}
	}
}
