// Package panels provides the side panel widgets of the viewer window.
package panels

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"track-viewer/internal/trackstore"
	"track-viewer/internal/trend"
	"track-viewer/internal/viewer"
)

// TrackPanel shows the selected track's summary, the last neighbor
// query, and the trend plot.
type TrackPanel struct {
	ctrl    *viewer.Controller
	store   *trackstore.Store
	plotter *trend.Plotter
	columns []neighborColumn

	trackLabel *widget.Label
	frameLabel *widget.Label
	editsLabel *widget.Label

	neighborTable *widget.Table
	neighbors     []trackstore.Neighbor

	trendImage *fynecanvas.Image

	container fyne.CanvasObject
}

// neighborColumn is one column of the neighbor table.
type neighborColumn struct {
	title string
	text  func(n trackstore.Neighbor) string
}

// neighborColumns builds the table layout: spot identity and distance,
// then the morphology and intensity measurements.
func neighborColumns(field, monitor string) []neighborColumn {
	cols := []neighborColumn{
		{"id", func(n trackstore.Neighbor) string { return fmt.Sprintf("%d", n.Spot.ID) }},
		{"track", func(n trackstore.Neighbor) string { return fmt.Sprintf("%d", n.Spot.Track) }},
		{"dist", func(n trackstore.Neighbor) string { return fmt.Sprintf("%.1f", n.Distance) }},
	}
	seen := map[string]bool{}
	for _, name := range []string{"AREA", "CIRCULARITY", field, monitor} {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		name := name
		cols = append(cols, neighborColumn{name, func(n trackstore.Neighbor) string {
			if v, ok := n.Spot.Measurement(name); ok {
				return fmt.Sprintf("%.2f", v)
			}
			return "-"
		}})
	}
	return cols
}

// NewTrackPanel creates the side panel and subscribes it to controller
// events.
func NewTrackPanel(ctrl *viewer.Controller, store *trackstore.Store, plotter *trend.Plotter, field, monitor string) *TrackPanel {
	tp := &TrackPanel{
		ctrl:       ctrl,
		store:      store,
		plotter:    plotter,
		columns:    neighborColumns(field, monitor),
		trackLabel: widget.NewLabel(""),
		frameLabel: widget.NewLabel(""),
		editsLabel: widget.NewLabel(""),
	}

	tp.neighborTable = widget.NewTable(
		func() (int, int) { return len(tp.neighbors) + 1, len(tp.columns) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		tp.updateCell,
	)
	for i := range tp.columns {
		w := float32(60)
		if i >= 3 {
			w = 90 // measurement columns carry longer headers
		}
		tp.neighborTable.SetColumnWidth(i, w)
	}

	tp.trendImage = &fynecanvas.Image{FillMode: fynecanvas.ImageFillContain}
	tp.trendImage.SetMinSize(fyne.NewSize(320, 240))

	tp.container = container.NewBorder(
		container.NewVBox(
			tp.trackLabel,
			tp.frameLabel,
			tp.editsLabel,
			widget.NewSeparator(),
		),
		tp.trendImage,
		nil,
		nil,
		tp.neighborTable,
	)

	ctrl.On(viewer.EventTrackChanged, func(interface{}) { tp.Update() })
	ctrl.On(viewer.EventEdited, func(interface{}) { tp.Update() })
	ctrl.On(viewer.EventRedraw, func(interface{}) { tp.Update() })

	tp.Update()
	return tp
}

// Container returns the panel for embedding in layouts.
func (tp *TrackPanel) Container() fyne.CanvasObject {
	return tp.container
}

func (tp *TrackPanel) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	label := obj.(*widget.Label)
	col := tp.columns[id.Col]
	if id.Row == 0 {
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.SetText(col.title)
		return
	}
	label.TextStyle = fyne.TextStyle{}
	label.SetText(col.text(tp.neighbors[id.Row-1]))
}

// Update refreshes every widget from the controller state.
func (tp *TrackPanel) Update() {
	id := tp.ctrl.Track()
	tp.trackLabel.SetText(fmt.Sprintf("Track %d of %d", id, tp.store.NTracks()))

	if min, max, err := tp.store.FrameRange(id); err == nil {
		tp.frameLabel.SetText(fmt.Sprintf("Frame %d (track spans %d-%d)", tp.ctrl.Frame(), min, max))
	} else {
		tp.frameLabel.SetText(fmt.Sprintf("Frame %d", tp.ctrl.Frame()))
	}

	if tp.ctrl.Modified() {
		tp.editsLabel.SetText("unsaved edits")
	} else {
		tp.editsLabel.SetText("")
	}

	tp.neighbors = tp.ctrl.Neighbors()
	tp.neighborTable.Refresh()

	tp.updateTrend(id)
}

func (tp *TrackPanel) updateTrend(id trackstore.TrackID) {
	img, err := tp.plotter.Track(tp.store, id)
	if err != nil {
		log.Printf("trend plot: %v", err)
		return
	}
	tp.trendImage.Image = img
	tp.trendImage.Refresh()
}
