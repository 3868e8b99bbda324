// Package viewer holds the navigation and editing state machine that sits
// between the input handlers and the rendering surface. All mutation goes
// through Dispatch on the event thread; the controller itself is not
// goroutine safe.
package viewer

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"track-viewer/internal/config"
	"track-viewer/internal/journal"
	"track-viewer/internal/trackstore"
	"track-viewer/internal/volume"
	"track-viewer/pkg/geometry"
)

// EventType identifies controller events the UI subscribes to.
type EventType int

const (
	// EventRedraw fires whenever the composed frame must be rebuilt.
	EventRedraw EventType = iota

	// EventStatus fires with the new status line text.
	EventStatus

	// EventTrackChanged fires when the selected track changes.
	EventTrackChanged

	// EventEdited fires after a successful split or join.
	EventEdited

	// EventSaved fires after a successful write, with the output path.
	EventSaved

	// EventQuit fires when the session should end.
	EventQuit
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Controller is the single owner of navigation and editing state.
type Controller struct {
	store    *trackstore.Store
	vol      *volume.Volume
	jrnl     *journal.Journal
	cfg      *config.Config
	dataPath string
	savePath string

	frame    int
	trackIdx int
	track    trackstore.TrackID
	channel  int

	overlay  bool
	modified bool

	// Pending numeric track-id entry; nil when inactive.
	input []rune

	// Last neighbor query, kept for labels until the next redraw-worthy
	// navigation.
	neighbors []trackstore.Neighbor

	draw       boundaryDraw
	snapshot   SnapshotFunc
	lastRegion *RegionResult

	status    string
	listeners map[EventType][]EventListener
	quit      bool
}

// New creates a controller over a loaded store. vol and jrnl may be nil
// when no volume file or journal is configured.
func New(store *trackstore.Store, vol *volume.Volume, jrnl *journal.Journal, cfg *config.Config, dataPath string) *Controller {
	c := &Controller{
		store:     store,
		vol:       vol,
		jrnl:      jrnl,
		cfg:       cfg,
		dataPath:  dataPath,
		savePath:  editedPath(dataPath),
		channel:   cfg.Data.Channel,
		overlay:   true,
		listeners: make(map[EventType][]EventListener),
	}
	if store.NTracks() > 0 {
		c.track, c.trackIdx = store.TrackAt(0)
	}
	return c
}

// On registers an event listener for the specified event type.
func (c *Controller) On(event EventType, listener EventListener) {
	c.listeners[event] = append(c.listeners[event], listener)
}

func (c *Controller) emit(event EventType, data interface{}) {
	for _, l := range c.listeners[event] {
		l(data)
	}
}

// Frame returns the displayed frame index.
func (c *Controller) Frame() int { return c.frame }

// Track returns the selected track id.
func (c *Controller) Track() trackstore.TrackID { return c.track }

// Channel returns the displayed volume channel.
func (c *Controller) Channel() int { return c.channel }

// OverlayVisible reports whether the track overlay is drawn.
func (c *Controller) OverlayVisible() bool { return c.overlay }

// Modified reports whether there are unsaved edits.
func (c *Controller) Modified() bool { return c.modified }

// Status returns the current status line.
func (c *Controller) Status() string { return c.status }

// SavePath returns where the next save will write.
func (c *Controller) SavePath() string { return c.savePath }

// editedPath derives the default output file next to the input, so a
// save never overwrites the original export: spots.csv -> spots_edited.csv.
func editedPath(dataPath string) string {
	ext := filepath.Ext(dataPath)
	return strings.TrimSuffix(dataPath, ext) + "_edited" + ext
}

// InputActive reports whether numeric track entry is in progress.
func (c *Controller) InputActive() bool { return c.input != nil }

// InputText returns the pending digits.
func (c *Controller) InputText() string { return string(c.input) }

// Neighbors returns the last neighbor query result.
func (c *Controller) Neighbors() []trackstore.Neighbor { return c.neighbors }

// Drawing reports whether boundary drawing mode is active.
func (c *Controller) Drawing() bool { return c.draw.active }

// Boundary returns the control points drawn so far.
func (c *Controller) Boundary() []geometry.Point2D { return c.draw.points }

// BoundaryClosed reports whether a finalized boundary awaits RunRegion.
func (c *Controller) BoundaryClosed() bool { return c.draw.closed }

// Slice returns the volume page for the current frame and channel, or
// nil when no volume is loaded.
func (c *Controller) Slice() *image.Gray {
	if c.vol == nil {
		return nil
	}
	return c.vol.Slice(c.frame, c.channel)
}

// Dispatch applies one command to the state. Edit failures become status
// messages, never panics: a rejected join must leave the session usable.
func (c *Controller) Dispatch(cmd Command) {
	// Digit entry captures everything except its own terminators.
	if c.input != nil {
		c.dispatchInput(cmd)
		return
	}

	switch cmd := cmd.(type) {
	case FrameStep:
		c.stepFrame(cmd.Delta)
	case TrackStep:
		c.stepTrack(cmd.Delta)
	case EnterTrackInput:
		c.input = []rune{}
		c.setStatus("track id: ")
	case QueryNeighbors:
		c.queryAtCurrentSpot()
	case QueryAt:
		if c.draw.active {
			c.addBoundaryPoint(cmd.Pos)
			return
		}
		c.query(cmd.Pos)
	case JumpClosest:
		c.jumpClosest()
	case ToggleOverlay:
		c.overlay = !c.overlay
		c.emit(EventRedraw, nil)
	case Split:
		c.split()
	case Join:
		c.join(cmd.Donor)
	case Save:
		c.save()
	case SaveAs:
		if cmd.Path != "" {
			c.savePath = cmd.Path
		}
		c.save()
	case ToggleDraw:
		c.toggleDraw()
	case AddBoundaryPoint:
		c.addBoundaryPoint(cmd.Pos)
	case RemoveBoundaryPoint:
		c.removeBoundaryPoint()
	case RunRegion:
		c.runRegion()
	case SetChannel:
		c.setChannel(cmd.Channel)
	case CycleChannel:
		if c.vol != nil {
			c.setChannel((c.channel + 1) % c.vol.Channels())
		}
	case ResetCamera:
		c.emit(EventRedraw, nil)
	case ShowHelp:
		c.setStatus(helpText)
	case Quit:
		c.quit = true
		c.emit(EventQuit, nil)
	}
}

// ShouldQuit reports whether a Quit command was dispatched.
func (c *Controller) ShouldQuit() bool { return c.quit }

func (c *Controller) dispatchInput(cmd Command) {
	switch cmd := cmd.(type) {
	case InputDigit:
		if cmd.Digit >= '0' && cmd.Digit <= '9' {
			c.input = append(c.input, cmd.Digit)
			c.setStatus("track id: " + string(c.input))
		}
	case InputBackspace:
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
		c.setStatus("track id: " + string(c.input))
	case InputConfirm:
		text := string(c.input)
		c.input = nil
		c.confirmTrackInput(text)
	case InputCancel, EnterTrackInput:
		c.input = nil
		c.setStatus("")
	case Quit:
		c.input = nil
		c.quit = true
		c.emit(EventQuit, nil)
	default:
		// Everything else is ignored while digits are pending.
	}
}

func (c *Controller) confirmTrackInput(text string) {
	if text == "" {
		c.setStatus("")
		return
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		c.setStatus(fmt.Sprintf("bad track id %q", text))
		return
	}

	// An unknown id is still selected: the view simply shows no
	// geometry for it, and the status line says why.
	id := trackstore.TrackID(n)
	if c.store.TrackIndex(id) < 0 {
		c.track = id
		c.neighbors = nil
		c.setStatus(fmt.Sprintf("track %d does not exist", id))
		c.emit(EventTrackChanged, id)
		c.emit(EventRedraw, nil)
		return
	}
	c.jumpToTrackStart(id)
}

func (c *Controller) selectTrack(id trackstore.TrackID) {
	idx := c.store.TrackIndex(id)
	if idx < 0 {
		c.setStatus(fmt.Sprintf("track %d does not exist", id))
		return
	}
	c.track, c.trackIdx = id, idx
	c.neighbors = nil
	c.clampFrameToTrack()
	c.setStatus(fmt.Sprintf("track %d", id))
	c.emit(EventTrackChanged, id)
	c.emit(EventRedraw, nil)
}

// jumpToTrackStart selects a track and moves to its first frame, the
// behavior of committed numeric entry.
func (c *Controller) jumpToTrackStart(id trackstore.TrackID) {
	if min, _, err := c.store.FrameRange(id); err == nil {
		c.frame = min
	}
	c.selectTrack(id)
}

func (c *Controller) stepFrame(delta int) {
	next := c.frame + delta
	if next < 0 {
		next = 0
	}
	if max := c.maxFrame(); next > max {
		next = max
	}
	if next == c.frame {
		return
	}
	c.frame = next
	c.neighbors = nil
	c.emit(EventRedraw, nil)
}

func (c *Controller) stepTrack(delta int) {
	if c.store.NTracks() == 0 {
		return
	}
	id, idx := c.store.TrackAt(c.trackIdx + delta)
	if idx == c.trackIdx {
		return
	}
	c.track, c.trackIdx = id, idx
	c.neighbors = nil
	if min, _, err := c.store.FrameRange(id); err == nil {
		c.frame = min
	}
	c.setStatus(fmt.Sprintf("track %d", id))
	c.emit(EventTrackChanged, id)
	c.emit(EventRedraw, nil)
}

// clampFrameToTrack moves the frame into the selected track's life span
// so the selection marker is always visible.
func (c *Controller) clampFrameToTrack() {
	min, max, err := c.store.FrameRange(c.track)
	if err != nil {
		return
	}
	if c.frame < min {
		c.frame = min
	}
	if c.frame > max {
		c.frame = max
	}
}

func (c *Controller) maxFrame() int {
	max := c.store.MaxFrame()
	if c.vol != nil && c.vol.Frames()-1 > max {
		max = c.vol.Frames() - 1
	}
	return max
}

func (c *Controller) queryAtCurrentSpot() {
	spot := c.store.SpotAt(c.track, c.frame)
	if spot == nil {
		c.setStatus(fmt.Sprintf("track %d has no spot at frame %d", c.track, c.frame))
		return
	}
	c.query(geometry.Point2D{X: spot.X, Y: spot.Y})
}

func (c *Controller) query(pos geometry.Point2D) {
	c.neighbors = c.store.NeighborsAtFrame(c.frame, pos, c.cfg.Query.Neighbors)
	if len(c.neighbors) == 0 {
		c.setStatus(fmt.Sprintf("no spots at frame %d", c.frame))
		return
	}
	c.setStatus(fmt.Sprintf("%d spots near (%.0f, %.0f)", len(c.neighbors), pos.X, pos.Y))
	c.emit(EventRedraw, nil)
}

func (c *Controller) jumpClosest() {
	if len(c.neighbors) == 0 {
		c.setStatus("no neighbor query to jump to")
		return
	}
	c.selectTrack(c.neighbors[0].Spot.Track)
}

func (c *Controller) split() {
	newID, err := c.store.SplitTrack(c.track, c.frame)
	if err != nil {
		if errors.Is(err, trackstore.ErrEmptyTrack) {
			c.setStatus(fmt.Sprintf("nothing to split at frame %d", c.frame))
			return
		}
		c.setStatus("split failed: " + err.Error())
		return
	}

	c.modified = true
	c.neighbors = nil
	if c.jrnl != nil {
		if err := c.jrnl.RecordSplit(c.track, newID, c.frame); err != nil {
			log.Printf("journal: %v", err)
		}
	}
	c.setStatus(fmt.Sprintf("split track %d at frame %d, tail is now %d", c.track, c.frame, newID))
	c.emit(EventEdited, nil)
	c.emit(EventRedraw, nil)
}

func (c *Controller) join(donor trackstore.TrackID) {
	target := c.track
	if err := c.store.JoinTracks(target, donor); err != nil {
		switch {
		case errors.Is(err, trackstore.ErrOverlap):
			c.setStatus(fmt.Sprintf("join rejected: tracks %d and %d overlap in time", target, donor))
		case errors.Is(err, trackstore.ErrEmptyTrack):
			c.setStatus(fmt.Sprintf("join rejected: track %d or %d has no spots", target, donor))
		default:
			c.setStatus("join failed: " + err.Error())
		}
		return
	}

	// The donor id vanished; reselect the target to refresh the index.
	c.trackIdx = c.store.TrackIndex(target)
	c.modified = true
	c.neighbors = nil
	if c.jrnl != nil {
		if err := c.jrnl.RecordJoin(target, donor); err != nil {
			log.Printf("journal: %v", err)
		}
	}
	c.setStatus(fmt.Sprintf("joined track %d into %d", donor, target))
	c.emit(EventTrackChanged, target)
	c.emit(EventEdited, nil)
	c.emit(EventRedraw, nil)
}

func (c *Controller) save() {
	f, err := os.Create(c.savePath)
	if err != nil {
		c.setStatus("save failed: " + err.Error())
		return
	}
	if err := c.store.Write(f); err != nil {
		f.Close()
		c.setStatus("save failed: " + err.Error())
		return
	}
	if err := f.Close(); err != nil {
		c.setStatus("save failed: " + err.Error())
		return
	}

	c.modified = false
	if c.jrnl != nil {
		if err := c.jrnl.RecordSave(); err != nil {
			log.Printf("journal: %v", err)
		}
	}
	c.setStatus("saved " + c.savePath)
	c.emit(EventSaved, c.savePath)
}

func (c *Controller) setChannel(ch int) {
	if c.vol == nil || ch < 0 || ch >= c.vol.Channels() {
		return
	}
	c.channel = ch
	c.setStatus(fmt.Sprintf("channel %d", ch))
	c.emit(EventRedraw, nil)
}

func (c *Controller) setStatus(s string) {
	c.status = s
	c.emit(EventStatus, s)
}

// ReplaceStore swaps in a freshly loaded dataset after an external file
// change, keeping the selection when the track still exists.
func (c *Controller) ReplaceStore(s *trackstore.Store) {
	c.store = s
	c.neighbors = nil
	c.modified = false

	if idx := s.TrackIndex(c.track); idx >= 0 {
		c.trackIdx = idx
	} else if s.NTracks() > 0 {
		c.track, c.trackIdx = s.TrackAt(0)
	}
	c.clampFrameToTrack()
	if c.frame > c.maxFrame() {
		c.frame = c.maxFrame()
	}
	c.setStatus("reloaded " + c.dataPath)
	c.emit(EventTrackChanged, c.track)
	c.emit(EventRedraw, nil)
}

// Store returns the underlying dataset.
func (c *Controller) Store() *trackstore.Store { return c.store }

// SelectTrack selects a track and moves to its first frame. Used by the
// track dialog; the keyboard path goes through numeric entry commands.
func (c *Controller) SelectTrack(id trackstore.TrackID) {
	if c.store.TrackIndex(id) < 0 {
		c.setStatus(fmt.Sprintf("track %d does not exist", id))
		return
	}
	c.jumpToTrackStart(id)
}

const helpText = "arrows: frame/track  t: track id  c: neighbors  x: nearest  l: overlay  " +
	"S: split  J: join  W: save  o: draw  O: run region  digits/+: channel  r: reset view  q: quit"
