package trackstore

import (
	"sort"

	"track-viewer/pkg/geometry"
)

// SpotsAtFrame returns pointers to every valid spot at the given frame.
func (s *Store) SpotsAtFrame(frame int) []*Spot {
	var out []*Spot
	for i := range s.spots {
		if s.spots[i].Frame == frame {
			out = append(out, &s.spots[i])
		}
	}
	return out
}

// NeighborsAtFrame returns up to k spots at the given frame ordered by
// ascending 2D distance from pt. Rows with unparseable positions were
// never indexed, so no NaN filtering is needed here. Fewer than k
// results are returned when the frame has fewer spots; an empty frame
// yields an empty slice.
func (s *Store) NeighborsAtFrame(frame int, pt geometry.Point2D, k int) []Neighbor {
	spots := s.SpotsAtFrame(frame)
	if len(spots) == 0 || k <= 0 {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(spots))
	for _, sp := range spots {
		d := pt.Distance(geometry.Point2D{X: sp.X, Y: sp.Y})
		neighbors = append(neighbors, Neighbor{Spot: sp, Distance: d})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Spot.ID < neighbors[j].Spot.ID
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// TracksInRegion returns the sorted ids of every track with at least one
// spot inside the closed polygon. This is the full-dataset containment
// scan behind the boundary-draw feature; it runs to completion on the
// event goroutine.
func (s *Store) TracksInRegion(polygon []geometry.Point2D) []TrackID {
	if len(polygon) < 3 {
		return nil
	}
	seen := make(map[TrackID]struct{})
	for i := range s.spots {
		p := geometry.Point2D{X: s.spots[i].X, Y: s.spots[i].Y}
		if geometry.PointInPolygon(p, polygon) {
			seen[s.spots[i].Track] = struct{}{}
		}
	}
	out := make([]TrackID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
