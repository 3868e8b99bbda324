// Package trend plots per-track time series: the configured measurement
// and the intensity monitor field against frame number, with the step
// velocity on a second axis scale.
package trend

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"track-viewer/internal/trackstore"
)

// Config controls the plot layout.
type Config struct {
	// Field and MonitorField are the measurement column names plotted.
	Field        string
	MonitorField string

	// YMin/YMax fix the y-range when both are set; nil means automatic.
	YMin *float64
	YMax *float64

	// WidthPx/HeightPx give the rendered image size.
	WidthPx, HeightPx int
}

// Plotter renders trend plots for tracks of a store.
type Plotter struct {
	cfg Config
}

// New creates a trend plotter.
func New(cfg Config) *Plotter {
	if cfg.WidthPx <= 0 {
		cfg.WidthPx = 480
	}
	if cfg.HeightPx <= 0 {
		cfg.HeightPx = 320
	}
	return &Plotter{cfg: cfg}
}

// Track renders the trend plot for one track.
func (tp *Plotter) Track(s *trackstore.Store, id trackstore.TrackID) (image.Image, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Track %d", id)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = tp.cfg.Field

	if err := tp.addSeries(p, s, id); err != nil {
		return nil, err
	}

	if tp.cfg.YMin != nil && tp.cfg.YMax != nil {
		p.Y.Min = *tp.cfg.YMin
		p.Y.Max = *tp.cfg.YMax
	}
	p.Legend.Top = true
	p.Legend.Left = true

	c := vgimg.New(vg.Points(float64(tp.cfg.WidthPx)*0.75), vg.Points(float64(tp.cfg.HeightPx)*0.75))
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// Save writes the trend plot for one track to a PNG file.
func (tp *Plotter) Save(s *trackstore.Store, id trackstore.TrackID, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Track %d", id)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = tp.cfg.Field

	if err := tp.addSeries(p, s, id); err != nil {
		return err
	}
	if tp.cfg.YMin != nil && tp.cfg.YMax != nil {
		p.Y.Min = *tp.cfg.YMin
		p.Y.Max = *tp.cfg.YMax
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func (tp *Plotter) addSeries(p *plot.Plot, s *trackstore.Store, id trackstore.TrackID) error {
	if err := tp.addMeasurement(p, s, id, tp.cfg.Field, color.RGBA{R: 31, G: 119, B: 180, A: 255}, false); err != nil {
		return err
	}
	if tp.cfg.MonitorField != "" && tp.cfg.MonitorField != tp.cfg.Field {
		if err := tp.addMeasurement(p, s, id, tp.cfg.MonitorField, color.RGBA{R: 44, G: 160, B: 44, A: 255}, true); err != nil {
			return err
		}
	}
	return tp.addVelocity(p, s, id)
}

func (tp *Plotter) addMeasurement(p *plot.Plot, s *trackstore.Store, id trackstore.TrackID, field string, col color.Color, dashed bool) error {
	values, frames := s.MeasurementSeries(id, field)

	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(frames[i]), Y: v})
	}
	if len(pts) == 0 {
		return nil
	}

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = col
	if dashed {
		line.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
	}
	scatter.Color = col
	scatter.Radius = vg.Points(1.5)
	p.Add(line, scatter)
	p.Legend.Add(field, line)
	return nil
}

// addVelocity overlays the step velocity, scaled into the measurement
// range so a single axis suffices.
func (tp *Plotter) addVelocity(p *plot.Plot, s *trackstore.Store, id trackstore.TrackID) error {
	vel := s.VelocityProfile(id)
	points := s.PointsForTrack(id)
	if len(vel) < 2 || len(points) != len(vel) {
		return nil
	}

	pts := make(plotter.XYs, len(vel))
	for i, v := range vel {
		pts[i] = plotter.XY{X: float64(points[i].Frame), Y: v}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("velocity", line)
	return nil
}
