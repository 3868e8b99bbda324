package trackstore

import "errors"

// Error kinds surfaced by store operations. Callers match with errors.Is;
// the returned errors wrap these with detail.
var (
	// ErrDataFormat indicates malformed tabular input, typically a
	// missing required column. Fatal to the load call only.
	ErrDataFormat = errors.New("track data format error")

	// ErrOverlap indicates a join was rejected because the donor and
	// target tracks overlap in time. The store is left unchanged.
	ErrOverlap = errors.New("tracks overlap in time")

	// ErrEmptyTrack indicates an operation against a track (or track
	// suffix) that has no spots. Recoverable; the store is unchanged.
	ErrEmptyTrack = errors.New("track has no spots")
)
