package panels

import (
	"testing"

	"track-viewer/internal/trackstore"
)

func TestNeighborColumns(t *testing.T) {
	cols := neighborColumns("RADIUS", "MEAN_INTENSITY_CH1")

	want := []string{"id", "track", "dist", "AREA", "CIRCULARITY", "RADIUS", "MEAN_INTENSITY_CH1"}
	if len(cols) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(cols))
	}
	for i, title := range want {
		if cols[i].title != title {
			t.Errorf("column %d: expected %q, got %q", i, title, cols[i].title)
		}
	}

	n := trackstore.Neighbor{
		Spot: &trackstore.Spot{
			ID:    12,
			Track: 7,
			Measurements: map[string]float64{
				"AREA":   42.5,
				"RADIUS": 5,
			},
		},
		Distance: 3.26,
	}
	got := make(map[string]string)
	for _, c := range cols {
		got[c.title] = c.text(n)
	}
	if got["id"] != "12" || got["track"] != "7" || got["dist"] != "3.3" {
		t.Errorf("identity cells wrong: %v", got)
	}
	if got["AREA"] != "42.50" || got["RADIUS"] != "5.00" {
		t.Errorf("measurement cells wrong: %v", got)
	}
	if got["CIRCULARITY"] != "-" {
		t.Errorf("missing measurement must show a dash, got %q", got["CIRCULARITY"])
	}
}

func TestNeighborColumnsDeduplicates(t *testing.T) {
	cols := neighborColumns("AREA", "AREA")
	for i, c := range cols {
		for j := i + 1; j < len(cols); j++ {
			if c.title == cols[j].title {
				t.Errorf("duplicate column %q", c.title)
			}
		}
	}
}
