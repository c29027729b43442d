package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"signpad/internal/logging"
)

// Toolbar holds the pad's Clear and Save controls. Save is enabled only
// while the pad has content.
type Toolbar struct {
	ClearButton *widget.Button
	SaveButton  *widget.Button
	Status      *widget.Label

	pad    *SignaturePad
	onSave func(png []byte) error
}

// NewToolbar wires controls to pad. onSave receives the exported PNG.
func NewToolbar(pad *SignaturePad, onSave func(png []byte) error) *Toolbar {
	t := &Toolbar{
		pad:    pad,
		onSave: onSave,
		Status: widget.NewLabel("Sign above"),
	}
	t.ClearButton = widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), t.clear)
	t.SaveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), t.save)
	t.SaveButton.Importance = widget.HighImportance

	pad.OnContentChanged = t.setSaveEnabled
	t.setSaveEnabled(pad.HasContent())
	return t
}

// Object returns the toolbar's canvas object.
func (t *Toolbar) Object() fyne.CanvasObject {
	return container.NewHBox(
		t.ClearButton,
		widget.NewSeparator(),
		t.Status,
		layout.NewSpacer(),
		t.SaveButton,
	)
}

func (t *Toolbar) setSaveEnabled(on bool) {
	if on {
		t.SaveButton.Enable()
	} else {
		t.SaveButton.Disable()
	}
}

func (t *Toolbar) clear() {
	t.pad.Clear()
	t.Status.SetText("Cleared")
}

func (t *Toolbar) save() {
	data, ok, err := t.pad.Save()
	switch {
	case err != nil:
		logging.Logger().Warn("[pad] save failed", "err", err)
		t.Status.SetText("Could not save signature")
		return
	case !ok:
		return
	}
	if t.onSave != nil {
		if err := t.onSave(data); err != nil {
			logging.Logger().Warn("[pad] save handler failed", "err", err)
			t.Status.SetText("Could not save signature")
			return
		}
	}
	t.Status.SetText(fmt.Sprintf("Saved (%d KB)", (len(data)+1023)/1024))
}
