// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"track-viewer/internal/config"
	"track-viewer/internal/render"
	"track-viewer/internal/trackstore"
	"track-viewer/internal/trend"
	"track-viewer/internal/version"
	"track-viewer/internal/viewer"
	"track-viewer/pkg/colormap"
	"track-viewer/pkg/geometry"
	"track-viewer/ui/canvas"
	"track-viewer/ui/dialogs"
	"track-viewer/ui/panels"
	"track-viewer/ui/prefs"
)

const watchInterval = 2 * time.Second

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	ctrl  *viewer.Controller
	cfg   *config.Config
	prefs *prefs.Prefs

	renderer *render.Renderer
	canvas   *canvas.SliceCanvas
	panel    *panels.TrackPanel

	statusBar *widget.Label
	watcher   *viewer.Watcher

	fitToWindowItem *fyne.MenuItem
}

// New creates the main window over an already constructed controller.
func New(fyneApp fyne.App, ctrl *viewer.Controller, cfg *config.Config, renderer *render.Renderer, dataPath string) *MainWindow {
	win := fyneApp.NewWindow("Track Viewer - " + filepath.Base(dataPath))

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		ctrl:     ctrl,
		cfg:      cfg,
		prefs:    prefs.Load(),
		renderer: renderer,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupKeys()
	mw.setupEventHandlers()
	mw.setupWatcher(dataPath)
	mw.applyPrefs(dataPath)

	ctrl.SetSnapshotFunc(func(path string) error {
		img := mw.canvas.Image()
		if img == nil {
			return fmt.Errorf("nothing rendered")
		}
		return render.SavePNG(path, img)
	})

	mw.redraw()
	return mw
}

// setupUI creates the main layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSliceCanvas()
	mw.canvas.OnLeftClick(func(x, y float64) {
		mw.ctrl.Dispatch(viewer.QueryAt{Pos: geometry.Point2D{X: x, Y: y}})
	})
	mw.canvas.OnRightClick(func(x, y float64) {
		if mw.ctrl.Drawing() {
			mw.ctrl.Dispatch(viewer.RemoveBoundaryPoint{})
		}
	})

	plotter := trend.New(trend.Config{
		Field:        mw.cfg.Data.FieldName,
		MonitorField: mw.cfg.Data.MonitorField,
		YMin:         mw.cfg.Display.YMin,
		YMax:         mw.cfg.Display.YMax,
	})
	mw.panel = panels.NewTrackPanel(mw.ctrl, mw.ctrl.Store(), plotter,
		mw.cfg.Data.FieldName, mw.cfg.Data.MonitorField)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()
	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.canvas.Container())

	split := container.NewHSplit(mw.panel.Container(), canvasArea)
	split.SetOffset(0.28)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(
		float32(mw.prefs.Float(prefs.KeyWindowWidth, 1280)),
		float32(mw.prefs.Float(prefs.KeyWindowHeight, 860))))
}

// createToolbar creates the toolbar with navigation and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	prevFrame := widget.NewButton("<", func() { mw.ctrl.Dispatch(viewer.FrameStep{Delta: -1}) })
	nextFrame := widget.NewButton(">", func() { mw.ctrl.Dispatch(viewer.FrameStep{Delta: 1}) })
	prevTrack := widget.NewButton("prev track", func() { mw.ctrl.Dispatch(viewer.TrackStep{Delta: -1}) })
	nextTrack := widget.NewButton("next track", func() { mw.ctrl.Dispatch(viewer.TrackStep{Delta: 1}) })

	zoomOut := widget.NewButton("-", mw.onZoomOut)
	zoomIn := widget.NewButton("+", mw.onZoomIn)
	fitBtn := widget.NewButton("Fit", mw.onToggleFitToWindow)
	actualBtn := widget.NewButton("1:1", mw.onActualSize)

	return container.NewHBox(
		widget.NewLabel("Frame:"), prevFrame, nextFrame,
		widget.NewSeparator(),
		prevTrack, nextTrack,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"), zoomOut, zoomIn, fitBtn, actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Save Tracks", func() { mw.ctrl.Dispatch(viewer.Save{}) }),
		fyne.NewMenuItem("Save Tracks As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.ctrl.Dispatch(viewer.Quit{}) }),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("  Fit to Window", mw.onToggleFitToWindow)
	viewItems := []*fyne.MenuItem{
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Track Overlay", func() { mw.ctrl.Dispatch(viewer.ToggleOverlay{}) }),
		fyne.NewMenuItem("Next Channel", func() { mw.ctrl.Dispatch(viewer.CycleChannel{}) }),
		fyne.NewMenuItemSeparator(),
	}
	for _, name := range colormap.Names() {
		name := name
		viewItems = append(viewItems, fyne.NewMenuItem("Colormap: "+name, func() {
			mw.renderer.SetColormap(name)
			mw.prefs.SetString(prefs.KeyColormap, name)
			mw.redraw()
		}))
	}
	viewMenu := fyne.NewMenu("View", viewItems...)

	trackMenu := fyne.NewMenu("Track",
		fyne.NewMenuItem("Go to Track...", func() {
			dialogs.ShowTrackSelect(mw.Window, func(id trackstore.TrackID) {
				mw.ctrl.SelectTrack(id)
			})
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Split at Current Frame", func() { mw.ctrl.Dispatch(viewer.Split{}) }),
		fyne.NewMenuItem("Join...", mw.onJoin),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Draw Region Boundary", func() { mw.ctrl.Dispatch(viewer.ToggleDraw{}) }),
		fyne.NewMenuItem("Run Region Query", func() { mw.ctrl.Dispatch(viewer.RunRegion{}) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Shortcuts", func() { mw.ctrl.Dispatch(viewer.ShowHelp{}) }),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, trackMenu, helpMenu))
}

// setupKeys wires raw key events to controller commands.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyRight:
			mw.ctrl.Dispatch(viewer.FrameStep{Delta: 1})
		case fyne.KeyLeft:
			mw.ctrl.Dispatch(viewer.FrameStep{Delta: -1})
		case fyne.KeyUp:
			mw.ctrl.Dispatch(viewer.TrackStep{Delta: 1})
		case fyne.KeyDown:
			mw.ctrl.Dispatch(viewer.TrackStep{Delta: -1})
		case fyne.KeyReturn, fyne.KeyEnter:
			mw.ctrl.Dispatch(viewer.InputConfirm{})
		case fyne.KeyEscape:
			mw.ctrl.Dispatch(viewer.InputCancel{})
		case fyne.KeyBackspace:
			mw.ctrl.Dispatch(viewer.InputBackspace{})
		}
	})

	mw.Canvas().SetOnTypedRune(func(r rune) {
		if mw.ctrl.InputActive() {
			if r >= '0' && r <= '9' {
				mw.ctrl.Dispatch(viewer.InputDigit{Digit: r})
			}
			return
		}

		switch r {
		case 't':
			mw.ctrl.Dispatch(viewer.EnterTrackInput{})
		case 'c':
			mw.ctrl.Dispatch(viewer.QueryNeighbors{})
		case 'x':
			mw.ctrl.Dispatch(viewer.JumpClosest{})
		case 'l':
			mw.ctrl.Dispatch(viewer.ToggleOverlay{})
		case 'S':
			mw.ctrl.Dispatch(viewer.Split{})
		case 'J':
			mw.onJoin()
		case 'W':
			mw.ctrl.Dispatch(viewer.Save{})
		case 'o':
			mw.ctrl.Dispatch(viewer.ToggleDraw{})
		case 'O':
			mw.ctrl.Dispatch(viewer.RunRegion{})
		case '+':
			mw.ctrl.Dispatch(viewer.CycleChannel{})
		case 'r':
			mw.ctrl.Dispatch(viewer.ResetCamera{})
			mw.canvas.SetFitToWindow(true)
		case 'h':
			mw.ctrl.Dispatch(viewer.ShowHelp{})
		case 'q':
			mw.ctrl.Dispatch(viewer.Quit{})
		default:
			if r >= '0' && r <= '9' {
				mw.ctrl.Dispatch(viewer.SetChannel{Channel: int(r - '0')})
			}
		}
	})
}

// setupEventHandlers subscribes the window to controller events.
func (mw *MainWindow) setupEventHandlers() {
	mw.ctrl.On(viewer.EventRedraw, func(interface{}) { mw.redraw() })
	mw.ctrl.On(viewer.EventStatus, func(data interface{}) {
		if text, ok := data.(string); ok {
			mw.statusBar.SetText(text)
		}
	})
	mw.ctrl.On(viewer.EventEdited, func(interface{}) { mw.updateTitle() })
	mw.ctrl.On(viewer.EventSaved, func(interface{}) {
		// A save-as to the watched file must not refire the reload prompt.
		if mw.watcher != nil {
			mw.watcher.ResetBaseline()
		}
		mw.updateTitle()
	})
	mw.ctrl.On(viewer.EventQuit, func(interface{}) {
		size := mw.Canvas().Size()
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		_ = mw.prefs.Save()
		mw.app.Quit()
	})
}

// applyPrefs restores the saved colormap and fit mode and records the
// opened file for the next session.
func (mw *MainWindow) applyPrefs(dataPath string) {
	if name := mw.prefs.String(prefs.KeyColormap); name != "" {
		mw.renderer.SetColormap(name)
	}
	if mw.prefs.Bool(prefs.KeyFitToWindow, false) {
		mw.canvas.SetFitToWindow(true)
		mw.fitToWindowItem.Label = "✓ Fit to Window"
	}
	mw.prefs.SetString(prefs.KeyLastTracks, dataPath)
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(dataPath))

	// An explicit camera pose in the config overrides the saved fit mode.
	if mw.cfg.Display.Zoom > 0 {
		mw.canvas.SetFitToWindow(false)
		mw.fitToWindowItem.Label = "  Fit to Window"
		mw.canvas.SetZoom(mw.cfg.Display.Zoom)
		if mw.cfg.Display.CenterX != 0 || mw.cfg.Display.CenterY != 0 {
			mw.canvas.CenterOn(mw.cfg.Display.CenterX, mw.cfg.Display.CenterY)
		}
	}
}

// setupWatcher reacts to the data file changing on disk.
func (mw *MainWindow) setupWatcher(dataPath string) {
	mw.watcher = viewer.NewWatcher(dataPath, watchInterval)
	if mw.watcher == nil {
		return
	}
	mw.watcher.OnChange(func() {
		fyne.Do(func() {
			dialogs.ShowReloadPrompt(mw.Window, filepath.Base(dataPath), func() {
				mw.reload(dataPath)
			})
			mw.watcher.ResetBaseline()
			mw.watcher.Start()
		})
	})
	mw.watcher.Start()
}

func (mw *MainWindow) reload(dataPath string) {
	f, err := os.Open(dataPath)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	defer f.Close()

	store, err := trackstore.Load(f, mw.cfg.Data.SkipRows)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.ctrl.ReplaceStore(store)
}

func (mw *MainWindow) onSaveAs() {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		mw.ctrl.Dispatch(viewer.SaveAs{Path: path})
	}, mw.Window)
}

func (mw *MainWindow) onJoin() {
	dialogs.ShowJoinPrompt(mw.Window, mw.ctrl.Track(), func(donor trackstore.TrackID) {
		mw.ctrl.Dispatch(viewer.Join{Donor: donor})
	})
}

// redraw recomposes the frame from the controller state.
func (mw *MainWindow) redraw() {
	store := mw.ctrl.Store()

	var ov render.Overlay
	if mw.ctrl.OverlayVisible() {
		ov.Track = store.PointsForTrack(mw.ctrl.Track())
		ov.Velocities = store.VelocityProfile(mw.ctrl.Track())
		if spot := store.SpotAt(mw.ctrl.Track(), mw.ctrl.Frame()); spot != nil {
			ov.Current = &geometry.Point2D{X: spot.X, Y: spot.Y}
		}
		for _, n := range mw.ctrl.Neighbors() {
			ov.Labels = append(ov.Labels, render.Label{
				Pos:  geometry.Point2D{X: n.Spot.X, Y: n.Spot.Y},
				Text: fmt.Sprintf("%d", n.Spot.Track),
			})
		}
	}
	ov.Boundary = mw.ctrl.Boundary()
	ov.BoundaryClosed = mw.ctrl.BoundaryClosed()

	img := mw.renderer.Frame(mw.ctrl.Frame(), mw.ctrl.Channel(), mw.ctrl.Slice(), ov)
	mw.canvas.SetImage(img)
	mw.canvas.Refresh()
	mw.updateTitle()
}

func (mw *MainWindow) updateTitle() {
	title := fmt.Sprintf("Track Viewer - track %d, frame %d", mw.ctrl.Track(), mw.ctrl.Frame())
	if mw.ctrl.Modified() {
		title += " *"
	}
	mw.SetTitle(title)
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	enabled := !strings.HasPrefix(mw.fitToWindowItem.Label, "✓")
	mw.canvas.SetFitToWindow(enabled)
	mw.prefs.SetBool(prefs.KeyFitToWindow, enabled)
	if enabled {
		mw.fitToWindowItem.Label = "✓ Fit to Window"
	} else {
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	mw.canvas.SetFitToWindow(false)
	mw.fitToWindowItem.Label = "  Fit to Window"
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Track Viewer",
		fmt.Sprintf("Track Viewer v%s\n\n"+
			"Interactive viewer and editor for cell tracking exports.\n\n"+
			"Built: %s\nCommit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
