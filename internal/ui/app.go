package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"signpad/internal/config"
	"signpad/internal/session"
)

// RunApp opens the signature window and blocks until it closes. onSave is
// handed the PNG whenever the user saves.
func RunApp(cfg config.Config, sess *session.Session, onSave func(png []byte) error) {
	myApp := app.NewWithID("io.signpad")
	myWindow := myApp.NewWindow("Signature")

	size := fyne.NewSize(float32(cfg.Surface.Width), float32(cfg.Surface.Height))
	pad := NewSignaturePad(sess, size)
	toolbar := NewToolbar(pad, onSave)

	content := container.NewBorder(nil, toolbar.Object(), nil, nil, pad)
	myWindow.SetContent(content)
	myWindow.Resize(fyne.NewSize(size.Width+40, size.Height+80))
	myWindow.SetFixedSize(true)
	myWindow.ShowAndRun()
}
