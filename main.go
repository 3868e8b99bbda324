// Package main provides the entry point for the track viewer.
package main

import (
	"flag"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"track-viewer/internal/config"
	"track-viewer/internal/journal"
	"track-viewer/internal/render"
	"track-viewer/internal/trackstore"
	"track-viewer/internal/version"
	"track-viewer/internal/viewer"
	"track-viewer/internal/volume"
	"track-viewer/ui/mainwindow"
)

const appTitle = "Track Viewer"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		tracksPath = flag.String("tracks", "", "spot table CSV (required)")
		volumePath = flag.String("volume", "", "multi-page TIFF stack (optional)")
		configPath = flag.String("config", "viewer.yml", "configuration file")
	)
	flag.Parse()
	if *tracksPath == "" && flag.NArg() > 0 {
		*tracksPath = flag.Arg(0)
	}
	if *tracksPath == "" {
		log.Fatal("usage: track-viewer -tracks spots.csv [-volume stack.tif] [-config viewer.yml]")
	}

	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store := loadStore(*tracksPath, cfg)
	log.Printf("Loaded %d spots in %d tracks from %s", store.NSpots(), store.NTracks(), *tracksPath)
	if !store.HasColumn(cfg.Data.FieldName) {
		log.Printf("Warning: measurement column %q not in %s", cfg.Data.FieldName, *tracksPath)
	}

	var vol *volume.Volume
	if *volumePath != "" {
		vol, err = volume.Load(*volumePath, cfg.Data.NChannels, 0, 0)
		if err != nil {
			log.Fatalf("volume: %v", err)
		}
		log.Printf("Loaded %d frames x %d channels (%dx%d) from %s",
			vol.Frames(), vol.Channels(), vol.Width(), vol.Height(), *volumePath)
	}

	var jrnl *journal.Journal
	if cfg.Journal.Path != "" {
		jrnl, err = journal.Open(cfg.Journal.Path, *tracksPath)
		if err != nil {
			log.Fatalf("journal: %v", err)
		}
		defer jrnl.Close()
		log.Printf("Journaling edits to %s (session %s)", cfg.Journal.Path, jrnl.Session())
	}

	renderer, err := render.New(render.Config{
		Colormap:    cfg.Display.Colormap,
		MaxVelocity: cfg.Display.MaxVelocity,
		LabelSize:   cfg.Display.LabelSize,
		LabelColor:  cfg.Display.LabelColor,
	})
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	ctrl := viewer.New(store, vol, jrnl, cfg, *tracksPath)

	a := fyneapp.NewWithID("io.github.track-viewer")
	a.Settings().SetTheme(&mainwindow.ViewerTheme{})
	win := mainwindow.New(a, ctrl, cfg, renderer, *tracksPath)
	win.ShowAndRun()
}

func loadStore(path string, cfg *config.Config) *trackstore.Store {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("tracks: %v", err)
	}
	defer f.Close()

	store, err := trackstore.Load(f, cfg.Data.SkipRows)
	if err != nil {
		log.Fatalf("tracks: %v", err)
	}
	return store
}
