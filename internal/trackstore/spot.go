// Package trackstore owns the tabular cell-tracking dataset: the Spot
// model, CSV I/O, track queries, and the split/join edits applied before
// writing corrected results back out.
package trackstore

// Required column names. Case-sensitive, fixed by the TrackMate export
// format that produces these files.
const (
	ColID        = "ID"
	ColTrackID   = "TRACK_ID"
	ColFrame     = "FRAME"
	ColPositionX = "POSITION_X"
	ColPositionY = "POSITION_Y"
)

// SpotID identifies a single detection row.
type SpotID int64

// TrackID identifies a track; spots sharing a TrackID form the track.
type TrackID int64

// Spot is one detected cell instance at one frame.
type Spot struct {
	ID    SpotID
	Track TrackID
	Frame int
	X, Y  float64

	// Measurements holds every other numeric column by name
	// (AREA, CIRCULARITY, RADIUS, MEAN_INTENSITY_CH1, ...).
	Measurements map[string]float64

	// row is the index of the backing CSV record, so edits can be
	// written back preserving unrelated columns verbatim.
	row int
}

// Measurement returns the named measurement and whether it was present.
func (s *Spot) Measurement(name string) (float64, bool) {
	v, ok := s.Measurements[name]
	return v, ok
}

// TrackPoint is one vertex of a track polyline: position plus frame.
type TrackPoint struct {
	X, Y  float64
	Frame int
}

// Neighbor is one result of a nearest-neighbor query.
type Neighbor struct {
	Spot     *Spot
	Distance float64 // 2D distance from the query point
}
