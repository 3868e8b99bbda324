// Package dialogs provides the viewer's modal dialogs.
package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"track-viewer/internal/trackstore"
)

// ShowTrackSelect prompts for a track id and calls onSelect with it.
func ShowTrackSelect(win fyne.Window, onSelect func(trackstore.TrackID)) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("track id")
	entry.Validator = validTrackID

	d := dialog.NewForm("Go to Track", "Go", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Track", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			id, err := strconv.ParseInt(entry.Text, 10, 64)
			if err != nil {
				return
			}
			onSelect(trackstore.TrackID(id))
		}, win)
	d.Resize(fyne.NewSize(260, 140))
	d.Show()
	win.Canvas().Focus(entry)
}

// ShowJoinPrompt prompts for the donor track of a join into target.
func ShowJoinPrompt(win fyne.Window, target trackstore.TrackID, onJoin func(trackstore.TrackID)) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("donor track id")
	entry.Validator = validTrackID

	title := fmt.Sprintf("Join into Track %d", target)
	d := dialog.NewForm(title, "Join", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Donor", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			id, err := strconv.ParseInt(entry.Text, 10, 64)
			if err != nil {
				return
			}
			onJoin(trackstore.TrackID(id))
		}, win)
	d.Resize(fyne.NewSize(280, 140))
	d.Show()
	win.Canvas().Focus(entry)
}

// ShowReloadPrompt asks whether to reload after an external file change.
func ShowReloadPrompt(win fyne.Window, path string, onReload func()) {
	dialog.NewConfirm("File Changed",
		fmt.Sprintf("%s was modified outside the viewer.\nReload and discard unsaved edits?", path),
		func(ok bool) {
			if ok {
				onReload()
			}
		}, win).Show()
}

func validTrackID(s string) error {
	if s == "" {
		return fmt.Errorf("enter a track id")
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}
