// Command trackstat prints summary statistics for a spot table and can
// export per-track trend plots without opening the viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"track-viewer/internal/config"
	"track-viewer/internal/trackstore"
	"track-viewer/internal/trend"
)

func main() {
	tracksPath := flag.String("tracks", "", "spot table CSV")
	configPath := flag.String("config", "viewer.yml", "configuration file")
	plotDir := flag.String("plots", "", "directory to write per-track trend plots (optional)")
	top := flag.Int("top", 10, "number of longest tracks to list")
	flag.Parse()

	if *tracksPath == "" && flag.NArg() > 0 {
		*tracksPath = flag.Arg(0)
	}
	if *tracksPath == "" {
		fmt.Println("Usage: trackstat -tracks <spots.csv> [-plots dir] [-top 10]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(*tracksPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open tracks: %v\n", err)
		os.Exit(1)
	}
	store, err := trackstore.Load(f, cfg.Data.SkipRows)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load tracks: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d spots in %d tracks, frames 0-%d\n",
		store.NSpots(), store.NTracks(), store.MaxFrame())

	type stat struct {
		id     trackstore.TrackID
		length int
		mean   float64
	}
	stats := make([]stat, 0, store.NTracks())
	for _, id := range store.TrackIDs() {
		vel := store.VelocityProfile(id)
		mean := 0.0
		for _, v := range vel {
			mean += v
		}
		if len(vel) > 0 {
			mean /= float64(len(vel))
		}
		stats = append(stats, stat{id: id, length: len(vel), mean: mean})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].length > stats[j].length })

	n := *top
	if n > len(stats) {
		n = len(stats)
	}
	fmt.Printf("\n%-10s %-8s %s\n", "TRACK", "SPOTS", "MEAN VELOCITY")
	for _, s := range stats[:n] {
		fmt.Printf("%-10d %-8d %.3f\n", s.id, s.length, s.mean)
	}

	if *plotDir == "" {
		return
	}
	if err := os.MkdirAll(*plotDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create plot dir: %v\n", err)
		os.Exit(1)
	}
	plotter := trend.New(trend.Config{
		Field:        cfg.Data.FieldName,
		MonitorField: cfg.Data.MonitorField,
		YMin:         cfg.Display.YMin,
		YMax:         cfg.Display.YMax,
	})
	for _, s := range stats[:n] {
		path := filepath.Join(*plotDir, fmt.Sprintf("track_%d.png", s.id))
		if err := plotter.Save(store, s.id, path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to plot track %d: %v\n", s.id, err)
			continue
		}
		fmt.Printf("Wrote %s\n", path)
	}
}
