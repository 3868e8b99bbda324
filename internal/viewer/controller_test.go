package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"track-viewer/internal/config"
	"track-viewer/internal/trackstore"
	"track-viewer/pkg/geometry"
)

// testData builds a small table: track 1 over frames 0-4, track 2 over
// frames 0-2 (far away), track 9 over frames 6-8.
func testData() string {
	var b strings.Builder
	b.WriteString("ID,TRACK_ID,FRAME,POSITION_X,POSITION_Y,RADIUS\n")
	id := 1
	row := func(track, frame int, x, y float64) {
		fmt.Fprintf(&b, "%d,%d,%d,%g,%g,5\n", id, track, frame, x, y)
		id++
	}
	for f := 0; f <= 4; f++ {
		row(1, f, float64(10+f), 10)
	}
	for f := 0; f <= 2; f++ {
		row(2, f, 100, float64(100+f))
	}
	for f := 6; f <= 8; f++ {
		row(9, f, 50, 50)
	}
	return b.String()
}

func newController(t *testing.T) *Controller {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "spots.csv")
	require.NoError(t, os.WriteFile(path, []byte(testData()), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	store, err := trackstore.Load(f, 0)
	require.NoError(t, err)

	return New(store, nil, nil, config.Default(), path)
}

func TestInitialSelection(t *testing.T) {
	c := newController(t)
	assert.EqualValues(t, 1, c.Track())
	assert.Equal(t, 0, c.Frame())
	assert.True(t, c.OverlayVisible())
}

func TestFrameStepClamps(t *testing.T) {
	c := newController(t)

	c.Dispatch(FrameStep{Delta: -1})
	assert.Equal(t, 0, c.Frame(), "frame must not go below zero")

	c.Dispatch(FrameStep{Delta: 100})
	assert.Equal(t, 8, c.Frame(), "frame must clamp to the data's last frame")

	c.Dispatch(FrameStep{Delta: -3})
	assert.Equal(t, 5, c.Frame())
}

func TestTrackStepJumpsToFirstFrame(t *testing.T) {
	c := newController(t)

	c.Dispatch(TrackStep{Delta: -1})
	assert.EqualValues(t, 1, c.Track(), "track must not step below the first")

	c.Dispatch(TrackStep{Delta: 10})
	assert.EqualValues(t, 9, c.Track(), "track must clamp to the last")
	assert.Equal(t, 6, c.Frame(), "frame jumps to the selected track's first frame")

	// Stepping down from track 9 (frames 6-8) to track 2 (frames 0-2)
	// lands on 2's first frame, not a frame clamped into its span.
	c.Dispatch(TrackStep{Delta: -1})
	assert.EqualValues(t, 2, c.Track())
	assert.Equal(t, 0, c.Frame())
}

func TestNumericTrackEntry(t *testing.T) {
	c := newController(t)

	c.Dispatch(EnterTrackInput{})
	require.True(t, c.InputActive())

	c.Dispatch(InputDigit{Digit: '9'})
	assert.Equal(t, "9", c.InputText())

	// Navigation is captured while entry is pending.
	c.Dispatch(FrameStep{Delta: 1})
	assert.Equal(t, 0, c.Frame())

	c.Dispatch(InputConfirm{})
	assert.False(t, c.InputActive())
	assert.EqualValues(t, 9, c.Track())
	assert.Equal(t, 6, c.Frame(), "entry jumps to the track's first frame")
}

func TestNumericTrackEntryBackspaceAndCancel(t *testing.T) {
	c := newController(t)

	c.Dispatch(EnterTrackInput{})
	c.Dispatch(InputDigit{Digit: '4'})
	c.Dispatch(InputDigit{Digit: '2'})
	c.Dispatch(InputBackspace{})
	assert.Equal(t, "4", c.InputText())

	c.Dispatch(InputCancel{})
	assert.False(t, c.InputActive())
	assert.EqualValues(t, 1, c.Track(), "cancel keeps the selection")
}

func TestNumericTrackEntryUnknownID(t *testing.T) {
	c := newController(t)

	c.Dispatch(EnterTrackInput{})
	c.Dispatch(InputDigit{Digit: '7'})
	c.Dispatch(InputConfirm{})

	// An unknown id is still selected; the view shows no geometry.
	assert.EqualValues(t, 7, c.Track())
	assert.Contains(t, c.Status(), "does not exist")
	assert.Empty(t, c.store.PointsForTrack(c.Track()))

	// Navigation recovers afterwards.
	c.Dispatch(TrackStep{Delta: 1})
	assert.Contains(t, []trackstore.TrackID{1, 2, 9}, c.Track())
}

func TestQueryNeighbors(t *testing.T) {
	c := newController(t)

	c.Dispatch(QueryNeighbors{})
	got := c.Neighbors()
	require.NotEmpty(t, got)
	assert.EqualValues(t, 1, got[0].Spot.Track, "nearest to track 1's own spot is itself")

	// Stepping the frame clears the query.
	c.Dispatch(FrameStep{Delta: 1})
	assert.Empty(t, c.Neighbors())
}

func TestJumpClosest(t *testing.T) {
	c := newController(t)

	// Without a preceding query there is nothing to jump to.
	c.Dispatch(JumpClosest{})
	assert.EqualValues(t, 1, c.Track())

	c.Dispatch(QueryAt{Pos: geometry.Point2D{X: 99, Y: 99}})
	c.Dispatch(JumpClosest{})
	assert.EqualValues(t, 2, c.Track())
}

func TestSplitCreatesTailTrack(t *testing.T) {
	c := newController(t)
	c.Dispatch(FrameStep{Delta: 2})

	c.Dispatch(Split{})
	assert.True(t, c.Modified())
	// New id is one past the current maximum (9).
	assert.Equal(t, 4, c.store.NTracks())
	assert.GreaterOrEqual(t, c.store.TrackIndex(10), 0)
}

func TestSplitWithNothingPastFrame(t *testing.T) {
	c := newController(t)
	c.Dispatch(EnterTrackInput{})
	c.Dispatch(InputDigit{Digit: '2'})
	c.Dispatch(InputConfirm{})
	c.frame = 5

	c.Dispatch(Split{})
	assert.False(t, c.Modified())
	assert.Contains(t, c.Status(), "nothing to split")
}

func TestJoinOverlapRejectedKeepsSession(t *testing.T) {
	c := newController(t)

	// Tracks 1 (frames 0-4) and 2 (frames 0-2) overlap.
	c.Dispatch(Join{Donor: 2})
	assert.False(t, c.Modified())
	assert.Contains(t, c.Status(), "overlap")
	assert.Equal(t, 3, c.store.NTracks(), "rejected join must not mutate")

	// The session is still navigable.
	c.Dispatch(TrackStep{Delta: 1})
	assert.EqualValues(t, 2, c.Track())
}

func TestJoinDisjointSucceeds(t *testing.T) {
	c := newController(t)

	// Tracks 1 (frames 0-4) and 9 (frames 6-8) are disjoint.
	c.Dispatch(Join{Donor: 9})
	assert.True(t, c.Modified())
	assert.Equal(t, 2, c.store.NTracks())
	assert.EqualValues(t, 1, c.Track())
}

func TestSaveWritesEditedFileAndClearsModified(t *testing.T) {
	c := newController(t)
	c.Dispatch(FrameStep{Delta: 2})
	c.Dispatch(Split{})
	require.True(t, c.Modified())

	var saved string
	c.On(EventSaved, func(data interface{}) { saved, _ = data.(string) })

	c.Dispatch(Save{})
	assert.False(t, c.Modified())

	// The default destination sits next to the input, which stays intact.
	assert.Equal(t, strings.TrimSuffix(c.dataPath, ".csv")+"_edited.csv", c.SavePath())
	assert.Equal(t, c.SavePath(), saved)

	f, err := os.Open(c.SavePath())
	require.NoError(t, err)
	defer f.Close()
	reloaded, err := trackstore.Load(f, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.NTracks())

	orig, err := os.Open(c.dataPath)
	require.NoError(t, err)
	defer orig.Close()
	untouched, err := trackstore.Load(orig, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, untouched.NTracks(), "the input export must never be overwritten")
}

func TestSaveAsRedirectsLaterSaves(t *testing.T) {
	c := newController(t)
	target := filepath.Join(filepath.Dir(c.dataPath), "corrected.csv")

	c.Dispatch(SaveAs{Path: target})
	assert.Equal(t, target, c.SavePath())
	_, err := os.Stat(target)
	assert.NoError(t, err)

	// A plain save afterwards keeps writing to the chosen file.
	c.Dispatch(FrameStep{Delta: 2})
	c.Dispatch(Split{})
	c.Dispatch(Save{})
	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	reloaded, err := trackstore.Load(f, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.NTracks())
}

func TestEditsInvalidateNeighborQuery(t *testing.T) {
	c := newController(t)

	c.Dispatch(QueryAt{Pos: geometry.Point2D{X: 10, Y: 10}})
	require.NotEmpty(t, c.Neighbors())
	c.Dispatch(Join{Donor: 9})
	assert.Empty(t, c.Neighbors(), "a join changes the dataset under the query")

	c.Dispatch(QueryAt{Pos: geometry.Point2D{X: 10, Y: 10}})
	require.NotEmpty(t, c.Neighbors())
	c.Dispatch(Split{})
	assert.Empty(t, c.Neighbors(), "a split changes the dataset under the query")
}

func TestToggleOverlay(t *testing.T) {
	c := newController(t)
	redraws := 0
	c.On(EventRedraw, func(interface{}) { redraws++ })

	c.Dispatch(ToggleOverlay{})
	assert.False(t, c.OverlayVisible())
	c.Dispatch(ToggleOverlay{})
	assert.True(t, c.OverlayVisible())
	assert.Equal(t, 2, redraws)
}

func TestQuit(t *testing.T) {
	c := newController(t)
	quit := false
	c.On(EventQuit, func(interface{}) { quit = true })

	c.Dispatch(Quit{})
	assert.True(t, c.ShouldQuit())
	assert.True(t, quit)
}
