// Command regionquery lists the tracks whose spots fall inside a
// polygonal region, read as "x,y" pairs from a file or stdin. It is the
// batch counterpart of the viewer's boundary-draw query.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"track-viewer/internal/config"
	"track-viewer/internal/trackstore"
	"track-viewer/pkg/geometry"
)

func main() {
	tracksPath := flag.String("tracks", "", "spot table CSV")
	regionPath := flag.String("region", "-", "boundary file of x,y lines ('-' for stdin)")
	configPath := flag.String("config", "viewer.yml", "configuration file")
	smooth := flag.Bool("smooth", true, "resample the boundary through a closed spline")
	flag.Parse()

	if *tracksPath == "" {
		fmt.Println("Usage: regionquery -tracks <spots.csv> [-region boundary.txt] [-smooth=false]")
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

	boundary, err := readBoundary(*regionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read region: %v\n", err)
		os.Exit(1)
	}
	if len(boundary) < 3 {
		fmt.Fprintln(os.Stderr, "Region needs at least 3 points")
		os.Exit(1)
	}

	if *smooth {
		boundary = geometry.ResampleClosed(boundary, cfg.Query.RegionSamples)
	}

	tracks := store.TracksInRegion(boundary)
	fmt.Fprintf(os.Stderr, "%d of %d tracks inside the region\n", len(tracks), store.NTracks())
	for _, id := range tracks {
		fmt.Println(id)
	}
}

func readBoundary(path string) ([]geometry.Point2D, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var pts []geometry.Point2D
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(parts) < 2 {
			return nil, fmt.Errorf("bad boundary line %q", line)
		}
		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad x in %q", line)
		}
		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad y in %q", line)
		}
		pts = append(pts, geometry.Point2D{X: x, Y: y})
	}
	return pts, scanner.Err()
}
