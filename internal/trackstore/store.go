package trackstore

import (
	"fmt"
	"math"
	"sort"
)

// Store is the mutable track dataset. It is owned and mutated by a single
// goroutine (the viewer controller); no internal locking is needed.
type Store struct {
	header []string
	col    map[string]int
	rows   [][]string // all data records, original order
	spots  []Spot     // parsed valid rows, original order
	tracks []TrackID  // sorted unique track ids, recomputed after edits
}

// recomputeTracks rebuilds the unique-track index from scratch. Called
// after every structural edit rather than maintained incrementally, so
// the index can never drift from the data.
func (s *Store) recomputeTracks() {
	seen := make(map[TrackID]struct{})
	for i := range s.spots {
		seen[s.spots[i].Track] = struct{}{}
	}
	s.tracks = s.tracks[:0]
	for id := range seen {
		s.tracks = append(s.tracks, id)
	}
	sort.Slice(s.tracks, func(i, j int) bool { return s.tracks[i] < s.tracks[j] })
}

// TrackIDs returns the sorted unique track identifiers.
func (s *Store) TrackIDs() []TrackID {
	out := make([]TrackID, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// NTracks returns the number of unique tracks.
func (s *Store) NTracks() int { return len(s.tracks) }

// NSpots returns the number of valid (indexed) spots.
func (s *Store) NSpots() int { return len(s.spots) }

// HasColumn reports whether the named column exists in the loaded data.
func (s *Store) HasColumn(name string) bool {
	_, ok := s.col[name]
	return ok
}

// TrackAt returns the track id at the given index into the sorted
// unique-track list, clamping the index into [0, ntracks-1]. The clamped
// index is returned alongside.
func (s *Store) TrackAt(index int) (TrackID, int) {
	if len(s.tracks) == 0 {
		return 0, 0
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.tracks) {
		index = len(s.tracks) - 1
	}
	return s.tracks[index], index
}

// TrackIndex returns the position of the given track id in the sorted
// unique-track list, or -1 if the id does not exist.
func (s *Store) TrackIndex(id TrackID) int {
	i := sort.Search(len(s.tracks), func(i int) bool { return s.tracks[i] >= id })
	if i < len(s.tracks) && s.tracks[i] == id {
		return i
	}
	return -1
}

// PointsForTrack returns the track's (x, y, frame) points ordered by
// frame. The empty slice means the track currently has no geometry —
// callers must treat that as "no points", not as an error.
func (s *Store) PointsForTrack(id TrackID) []TrackPoint {
	var pts []TrackPoint
	for i := range s.spots {
		if s.spots[i].Track == id {
			pts = append(pts, TrackPoint{X: s.spots[i].X, Y: s.spots[i].Y, Frame: s.spots[i].Frame})
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Frame < pts[j].Frame })
	return pts
}

// VelocityProfile returns one step magnitude per track point, measured
// along the (x, y, frame) polyline. The first element duplicates the
// first step so the profile always matches PointsForTrack in length; a
// single-point track yields [0].
func (s *Store) VelocityProfile(id TrackID) []float64 {
	pts := s.PointsForTrack(id)
	if len(pts) == 0 {
		return nil
	}
	vel := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		dx := pts[i].X - pts[i-1].X
		dy := pts[i].Y - pts[i-1].Y
		df := float64(pts[i].Frame - pts[i-1].Frame)
		vel[i] = math.Sqrt(dx*dx + dy*dy + df*df)
	}
	if len(pts) > 1 {
		vel[0] = vel[1]
	}
	return vel
}

// MeasurementSeries returns the named measurement per track point,
// frame-ordered, alongside the frames. Points lacking the measurement
// carry NaN so the series stays aligned with the track geometry.
func (s *Store) MeasurementSeries(id TrackID, name string) (values []float64, frames []int) {
	var spots []*Spot
	for i := range s.spots {
		if s.spots[i].Track == id {
			spots = append(spots, &s.spots[i])
		}
	}
	sort.SliceStable(spots, func(i, j int) bool { return spots[i].Frame < spots[j].Frame })

	for _, sp := range spots {
		v, ok := sp.Measurement(name)
		if !ok {
			v = math.NaN()
		}
		values = append(values, v)
		frames = append(frames, sp.Frame)
	}
	return values, frames
}

// FrameRange returns the minimum and maximum frame of a track.
func (s *Store) FrameRange(id TrackID) (min, max int, err error) {
	pts := s.PointsForTrack(id)
	if len(pts) == 0 {
		return 0, 0, fmt.Errorf("track %d: %w", id, ErrEmptyTrack)
	}
	return pts[0].Frame, pts[len(pts)-1].Frame, nil
}

// SpotAt returns the track's spot at the given frame, or nil.
func (s *Store) SpotAt(id TrackID, frame int) *Spot {
	for i := range s.spots {
		if s.spots[i].Track == id && s.spots[i].Frame == frame {
			return &s.spots[i]
		}
	}
	return nil
}

// MaxFrame returns the largest frame index across all valid spots, or -1
// for an empty store.
func (s *Store) MaxFrame() int {
	max := -1
	for i := range s.spots {
		if s.spots[i].Frame > max {
			max = s.spots[i].Frame
		}
	}
	return max
}

// SplitTrack reassigns every spot of the track with frame >= fromFrame to
// a freshly minted id (current maximum id + 1) and returns the new id.
// Returns ErrEmptyTrack when the track has no spots at or after fromFrame;
// the store is unchanged in that case.
func (s *Store) SplitTrack(id TrackID, fromFrame int) (TrackID, error) {
	var idx []int
	for i := range s.spots {
		if s.spots[i].Track == id && s.spots[i].Frame >= fromFrame {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return 0, fmt.Errorf("split track %d at frame %d: %w", id, fromFrame, ErrEmptyTrack)
	}

	newID := s.tracks[len(s.tracks)-1] + 1
	for _, i := range idx {
		s.spots[i].Track = newID
	}
	s.recomputeTracks()
	return newID, nil
}

// JoinTracks relabels all spots of donor to target. The join is rejected
// with ErrOverlap — leaving the store untouched — unless the two frame
// ranges are disjoint or touch only at an endpoint: a donor that starts
// or ends strictly inside the target range, or fully contains it, would
// produce an ambiguous multi-valued track. Endpoint-equal frames are
// deliberately allowed.
func (s *Store) JoinTracks(target, donor TrackID) error {
	tMin, tMax, err := s.FrameRange(target)
	if err != nil {
		return fmt.Errorf("join target: %w", err)
	}
	dMin, dMax, err := s.FrameRange(donor)
	if err != nil {
		return fmt.Errorf("join donor: %w", err)
	}

	startsInside := dMin > tMin && dMin < tMax
	endsInside := dMax > tMin && dMax < tMax
	contains := dMin <= tMin && dMax >= tMax
	if startsInside || endsInside || contains {
		return fmt.Errorf("join %d <- %d: target frames [%d,%d], donor frames [%d,%d]: %w",
			target, donor, tMin, tMax, dMin, dMax, ErrOverlap)
	}

	for i := range s.spots {
		if s.spots[i].Track == donor {
			s.spots[i].Track = target
		}
	}
	s.recomputeTracks()
	return nil
}
