package geometry

import (
	"gonum.org/v1/gonum/interp"
)

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// ResampleClosed fits a smooth closed curve through the given control
// points and returns n samples along it. The control points are treated
// as a loop: the curve returns to the first point. Fewer than 3 control
// points cannot form a region and are returned unchanged.
func ResampleClosed(controls []Point2D, n int) []Point2D {
	if len(controls) < 3 || n < len(controls) {
		return controls
	}

	// Wrap the control points so the spline sees the seam as interior.
	m := len(controls)
	wrapped := make([]Point2D, 0, m+3)
	wrapped = append(wrapped, controls[m-1])
	wrapped = append(wrapped, controls...)
	wrapped = append(wrapped, controls[0], controls[1%m])

	// Parametrize by cumulative chord length.
	ts := make([]float64, len(wrapped))
	xs := make([]float64, len(wrapped))
	ys := make([]float64, len(wrapped))
	for i, p := range wrapped {
		if i > 0 {
			d := p.Distance(wrapped[i-1])
			if d == 0 {
				d = 1e-9 // interp requires strictly increasing abscissae
			}
			ts[i] = ts[i-1] + d
		}
		xs[i] = p.X
		ys[i] = p.Y
	}

	var sx, sy interp.AkimaSpline
	if err := sx.Fit(ts, xs); err != nil {
		return controls
	}
	if err := sy.Fit(ts, ys); err != nil {
		return controls
	}

	// Sample only the central span (control[0] .. back to control[0]).
	t0 := ts[1]
	t1 := ts[len(ts)-2]
	out := make([]Point2D, n)
	for i := 0; i < n; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(n)
		out[i] = Point2D{X: sx.Predict(t), Y: sy.Predict(t)}
	}
	return out
}
