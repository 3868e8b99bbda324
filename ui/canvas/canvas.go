// Package canvas provides the slice display with pan, zoom, and click
// reporting in image coordinates.
package canvas

import (
	"image"
	"image/draw"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// SliceCanvas displays the composed frame with pan, zoom, and click
// callbacks. The displayed image is produced elsewhere; the canvas only
// scales and positions it.
type SliceCanvas struct {
	widget.BaseWidget

	img    image.Image
	raster *fynecanvas.Raster
	zoom   float64

	scroll  *zoomScroll
	content *clickableContent
	imgSize fyne.Size

	fitToWindow    bool
	lastScrollSize fyne.Size

	onZoomChange func(zoom float64)
	onLeftClick  func(x, y float64)
	onRightClick func(x, y float64)
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *SliceCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *SliceCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// ScrollTo moves the scroll container to the given offset.
func (zs *zoomScroll) ScrollTo(pos fyne.Position) {
	zs.scroll.Offset = pos
	zs.scroll.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// clickableContent wraps the raster to handle mouse events.
type clickableContent struct {
	widget.BaseWidget
	canvas *SliceCanvas
	raster *fynecanvas.Raster
}

func newClickableContent(sc *SliceCanvas, raster *fynecanvas.Raster) *clickableContent {
	cc := &clickableContent{canvas: sc, raster: raster}
	cc.ExtendBaseWidget(cc)
	return cc
}

func (cc *clickableContent) CreateRenderer() fyne.WidgetRenderer {
	return &clickableContentRenderer{content: cc}
}

func (cc *clickableContent) MinSize() fyne.Size {
	return cc.raster.MinSize()
}

func (cc *clickableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		cc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		cc.canvas.ZoomOut()
	}
}

// imageCoords converts a widget position to image coordinates, or false
// when the click misses the widget.
func (cc *clickableContent) imageCoords(ev *fyne.PointEvent) (float64, float64, bool) {
	// Workaround for Fyne bug: reject clicks outside widget bounds
	size := cc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return 0, 0, false
	}

	offset := cc.canvas.scroll.Offset()
	canvasX := float64(ev.Position.X + offset.X)
	canvasY := float64(ev.Position.Y + offset.Y)
	return canvasX / cc.canvas.zoom, canvasY / cc.canvas.zoom, true
}

// Tapped handles left-click events.
func (cc *clickableContent) Tapped(ev *fyne.PointEvent) {
	if cc.canvas.onLeftClick == nil {
		return
	}
	if x, y, ok := cc.imageCoords(ev); ok {
		cc.canvas.onLeftClick(x, y)
	}
}

// TappedSecondary handles right-click events.
func (cc *clickableContent) TappedSecondary(ev *fyne.PointEvent) {
	if cc.canvas.onRightClick == nil {
		return
	}
	if x, y, ok := cc.imageCoords(ev); ok {
		cc.canvas.onRightClick(x, y)
	}
}

type clickableContentRenderer struct {
	content *clickableContent
}

func (r *clickableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *clickableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *clickableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *clickableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *clickableContentRenderer) Destroy() {}

// NewSliceCanvas creates an empty slice canvas.
func NewSliceCanvas() *SliceCanvas {
	sc := &SliceCanvas{
		zoom:    1.0,
		imgSize: fyne.NewSize(400, 300),
	}

	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(sc.imgSize)

	sc.content = newClickableContent(sc, sc.raster)
	sc.scroll = newZoomScroll(sc.content, sc)

	sc.ExtendBaseWidget(sc)
	return sc
}

func (sc *SliceCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sc.scroll)
}

// Container returns the canvas container for embedding in layouts.
func (sc *SliceCanvas) Container() fyne.CanvasObject {
	return sc.scroll
}

// SetImage sets the composed frame to display.
func (sc *SliceCanvas) SetImage(img image.Image) {
	sc.img = img
	sc.updateContentSize()
}

// Image returns the displayed frame.
func (sc *SliceCanvas) Image() image.Image {
	return sc.img
}

// SetZoom sets the zoom level.
func (sc *SliceCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	sc.zoom = zoom
	sc.updateContentSize()

	if sc.onZoomChange != nil {
		sc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (sc *SliceCanvas) Zoom() float64 {
	return sc.zoom
}

// ZoomIn increases the zoom level.
func (sc *SliceCanvas) ZoomIn() {
	sc.SetZoom(sc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (sc *SliceCanvas) ZoomOut() {
	sc.SetZoom(sc.zoom / zoomStep)
}

// FitToWindow adjusts zoom so the image fills the visible area.
func (sc *SliceCanvas) FitToWindow() {
	if sc.img == nil {
		return
	}
	bounds := sc.img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}

	viewSize := sc.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoomX := float64(viewSize.Width) / float64(bounds.Dx())
	zoomY := float64(viewSize.Height) / float64(bounds.Dy())

	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}

	sc.SetZoom(zoom * 0.95) // Leave a small margin
}

// CenterOn scrolls so the given image coordinate sits at the middle of
// the viewport, as far as the scroll range allows.
func (sc *SliceCanvas) CenterOn(x, y float64) {
	sc.scroll.ScrollTo(centerOffset(x, y, sc.zoom, sc.scroll.Size()))
}

// centerOffset computes the scroll offset that places image point (x, y)
// at the viewport center for the given zoom.
func centerOffset(x, y, zoom float64, view fyne.Size) fyne.Position {
	ox := float32(x*zoom) - view.Width/2
	oy := float32(y*zoom) - view.Height/2
	if ox < 0 {
		ox = 0
	}
	if oy < 0 {
		oy = 0
	}
	return fyne.NewPos(ox, oy)
}

// SetFitToWindow enables or disables auto-fit on resize.
func (sc *SliceCanvas) SetFitToWindow(fit bool) {
	sc.fitToWindow = fit
	if fit {
		sc.FitToWindow()
	}
}

// OnZoomChange sets a callback for zoom changes.
func (sc *SliceCanvas) OnZoomChange(callback func(zoom float64)) {
	sc.onZoomChange = callback
}

// OnLeftClick sets a callback for left-click events.
// Coordinates are in image space (not zoomed).
func (sc *SliceCanvas) OnLeftClick(callback func(x, y float64)) {
	sc.onLeftClick = callback
}

// OnRightClick sets a callback for right-click events.
// Coordinates are in image space (not zoomed).
func (sc *SliceCanvas) OnRightClick(callback func(x, y float64)) {
	sc.onRightClick = callback
}

// Refresh refreshes the canvas display.
func (sc *SliceCanvas) Refresh() {
	sc.raster.Refresh()
}

// updateContentSize updates the content size from the image and zoom.
func (sc *SliceCanvas) updateContentSize() {
	if sc.img == nil || sc.img.Bounds().Dx() == 0 {
		sc.imgSize = fyne.NewSize(400, 300)
	} else {
		bounds := sc.img.Bounds()
		sc.imgSize = fyne.NewSize(
			float32(float64(bounds.Dx())*sc.zoom),
			float32(float64(bounds.Dy())*sc.zoom))
	}

	sc.raster.SetMinSize(sc.imgSize)
	sc.raster.Resize(sc.imgSize)
	if sc.content != nil {
		sc.content.Resize(sc.imgSize)
		sc.content.Refresh()
	}
	sc.raster.Refresh()
	if sc.scroll != nil {
		sc.scroll.Refresh()
	}
}

// draw is the raster drawing function: the image scaled by the zoom with
// nearest sampling on a black background.
func (sc *SliceCanvas) draw(w, h int) image.Image {
	currentSize := fyne.NewSize(float32(w), float32(h))
	if sc.fitToWindow && currentSize != sc.lastScrollSize && w > 0 && h > 0 {
		sc.lastScrollSize = currentSize
		// Schedule fit after this draw completes
		go func() {
			sc.FitToWindow()
		}()
	}

	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	if sc.img == nil {
		return output
	}

	src := sc.img
	srcBounds := src.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && sc.zoom == 1.0 {
		draw.Draw(output, rgba.Bounds(), rgba, srcBounds.Min, draw.Src)
		return output
	}

	for y := 0; y < h; y++ {
		srcY := int(float64(y) / sc.zoom)
		if srcY >= srcBounds.Dy() {
			break
		}
		for x := 0; x < w; x++ {
			srcX := int(float64(x) / sc.zoom)
			if srcX >= srcBounds.Dx() {
				break
			}
			output.Set(x, y, src.At(srcBounds.Min.X+srcX, srcBounds.Min.Y+srcY))
		}
	}
	return output
}
