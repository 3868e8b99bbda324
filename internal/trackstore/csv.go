package trackstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Load parses track data from CSV. The first record is the header;
// skipRows following records are discarded (TrackMate exports echo the
// header in the next rows). Rows whose required fields fail to parse are
// retained for persistence but excluded from the query index.
func Load(r io.Reader, skipRows int) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrDataFormat, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{ColID, ColTrackID, ColFrame, ColPositionX, ColPositionY} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataFormat, required)
		}
	}

	s := &Store{
		header: header,
		col:    col,
	}

	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDataFormat, row, err)
		}
		if row < skipRows {
			row++
			continue
		}
		row++

		// Pad short records so column lookups stay in range.
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		idx := len(s.rows)
		s.rows = append(s.rows, rec)

		spot, ok := parseSpot(rec, header, col)
		if !ok {
			continue
		}
		spot.row = idx
		s.spots = append(s.spots, spot)
	}

	s.recomputeTracks()
	return s, nil
}

// parseSpot converts one record into a Spot. Returns false when a
// required field is blank, non-numeric, or NaN — the explicit
// row-validity rule replacing the source data's NaN-propagation trick.
func parseSpot(rec []string, header []string, col map[string]int) (Spot, bool) {
	id, err := strconv.ParseInt(rec[col[ColID]], 10, 64)
	if err != nil {
		return Spot{}, false
	}
	track, err := strconv.ParseInt(rec[col[ColTrackID]], 10, 64)
	if err != nil {
		return Spot{}, false
	}
	frame, err := strconv.Atoi(rec[col[ColFrame]])
	if err != nil || frame < 0 {
		return Spot{}, false
	}
	x, err := strconv.ParseFloat(rec[col[ColPositionX]], 64)
	if err != nil || math.IsNaN(x) {
		return Spot{}, false
	}
	y, err := strconv.ParseFloat(rec[col[ColPositionY]], 64)
	if err != nil || math.IsNaN(y) {
		return Spot{}, false
	}

	spot := Spot{
		ID:           SpotID(id),
		Track:        TrackID(track),
		Frame:        frame,
		X:            x,
		Y:            y,
		Measurements: make(map[string]float64),
	}

	for i, name := range header {
		switch name {
		case ColID, ColTrackID, ColFrame, ColPositionX, ColPositionY:
			continue
		}
		if v, err := strconv.ParseFloat(rec[i], 64); err == nil && !math.IsNaN(v) {
			spot.Measurements[name] = v
		}
	}
	return spot, true
}

// Write serializes the dataset back to CSV in the original column order.
// Track-ID edits are applied to the backing records; rows that never
// parsed are written verbatim. No partial-write recovery is attempted.
func (s *Store) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	trackCol := s.col[ColTrackID]
	for _, spot := range s.spots {
		s.rows[spot.row][trackCol] = strconv.FormatInt(int64(spot.Track), 10)
	}
	for _, rec := range s.rows {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
