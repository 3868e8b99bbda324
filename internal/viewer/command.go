package viewer

import (
	"track-viewer/internal/trackstore"
	"track-viewer/pkg/geometry"
)

// Command is the closed set of inputs the controller consumes. Key and
// mouse handlers translate raw events into these variants so every state
// transition goes through a single dispatch point.
type Command interface {
	isCommand()
}

// FrameStep moves the displayed frame by Delta, clamped to the data.
type FrameStep struct{ Delta int }

// TrackStep moves the track selection by Delta in TRACK_ID order.
type TrackStep struct{ Delta int }

// EnterTrackInput starts numeric track-id entry.
type EnterTrackInput struct{}

// InputDigit appends a digit to the pending track-id entry.
type InputDigit struct{ Digit rune }

// InputBackspace removes the last pending digit.
type InputBackspace struct{}

// InputConfirm commits the pending track-id entry.
type InputConfirm struct{}

// InputCancel abandons the pending track-id entry.
type InputCancel struct{}

// QueryNeighbors lists the nearest spots around the selected track's
// spot at the current frame.
type QueryNeighbors struct{}

// QueryAt lists the nearest spots around an image position.
type QueryAt struct{ Pos geometry.Point2D }

// JumpClosest selects the track of the nearest spot from the last
// neighbor query.
type JumpClosest struct{}

// ToggleOverlay switches the track overlay on or off.
type ToggleOverlay struct{}

// Split cuts the selected track at the current frame; spots from the
// current frame onward move to a new track.
type Split struct{}

// Join merges the donor track into the selected track.
type Join struct{ Donor trackstore.TrackID }

// Save writes the edited table to the current output path.
type Save struct{}

// SaveAs changes the output path, then writes the edited table to it.
type SaveAs struct{ Path string }

// ToggleDraw enters boundary drawing mode, or leaves it; leaving with
// enough points finalizes the boundary for RunRegion.
type ToggleDraw struct{}

// AddBoundaryPoint appends a control point to the boundary being drawn.
type AddBoundaryPoint struct{ Pos geometry.Point2D }

// RemoveBoundaryPoint removes the most recent control point.
type RemoveBoundaryPoint struct{}

// RunRegion closes the boundary and reports the tracks inside it.
type RunRegion struct{}

// SetChannel selects a volume channel by index.
type SetChannel struct{ Channel int }

// CycleChannel steps to the next volume channel.
type CycleChannel struct{}

// ResetCamera restores the initial camera pose.
type ResetCamera struct{}

// ShowHelp displays the key binding summary.
type ShowHelp struct{}

// Quit ends the session.
type Quit struct{}

func (FrameStep) isCommand()           {}
func (TrackStep) isCommand()           {}
func (EnterTrackInput) isCommand()     {}
func (InputDigit) isCommand()          {}
func (InputBackspace) isCommand()      {}
func (InputConfirm) isCommand()        {}
func (InputCancel) isCommand()         {}
func (QueryNeighbors) isCommand()      {}
func (QueryAt) isCommand()             {}
func (JumpClosest) isCommand()         {}
func (ToggleOverlay) isCommand()       {}
func (Split) isCommand()               {}
func (Join) isCommand()                {}
func (Save) isCommand()                {}
func (SaveAs) isCommand()              {}
func (ToggleDraw) isCommand()          {}
func (AddBoundaryPoint) isCommand()    {}
func (RemoveBoundaryPoint) isCommand() {}
func (RunRegion) isCommand()           {}
func (SetChannel) isCommand()          {}
func (CycleChannel) isCommand()        {}
func (ResetCamera) isCommand()         {}
func (ShowHelp) isCommand()            {}
func (Quit) isCommand()                {}
