package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"signpad/internal/logging"
	"signpad/internal/sample"
	"signpad/internal/session"
)

// SignaturePad shows a capture session's surface and feeds it mouse, drag
// and touch input. All callbacks run on the fyne event goroutine, which is
// the session's only driver.
type SignaturePad struct {
	widget.BaseWidget
	session *session.Session
	image   *canvas.Image
	content bool

	// OnContentChanged fires when the session's hasContent flag flips.
	OnContentChanged func(hasContent bool)
}

var _ fyne.Widget = (*SignaturePad)(nil)
var _ fyne.Draggable = (*SignaturePad)(nil)
var _ desktop.Mouseable = (*SignaturePad)(nil)
var _ desktop.Hoverable = (*SignaturePad)(nil)
var _ mobile.Touchable = (*SignaturePad)(nil)

// NewSignaturePad wraps sess. size is the pad's logical size on screen.
func NewSignaturePad(sess *session.Session, size fyne.Size) *SignaturePad {
	p := &SignaturePad{
		session: sess,
		image:   canvas.NewImageFromImage(sess.Image()),
		content: sess.HasContent(),
	}
	p.image.FillMode = canvas.ImageFillStretch
	p.image.ScaleMode = canvas.ImageScaleSmooth
	p.image.SetMinSize(size)
	p.ExtendBaseWidget(p)
	return p
}

// Session returns the session the pad drives.
func (p *SignaturePad) Session() *session.Session { return p.session }

// HasContent mirrors the session flag.
func (p *SignaturePad) HasContent() bool { return p.session.HasContent() }

// Clear blanks the pad.
func (p *SignaturePad) Clear() {
	p.apply(sample.Event{Kind: sample.KindClear})
}

// Save exports the signature. It reports false when there is nothing to save.
func (p *SignaturePad) Save() ([]byte, bool, error) {
	return p.session.Save()
}

// Resize keeps the session's input bounds in step with the widget.
func (p *SignaturePad) Resize(size fyne.Size) {
	p.BaseWidget.Resize(size)
	p.session.SetBounds(sample.Rect{W: float64(size.Width), H: float64(size.Height)})
}

func (p *SignaturePad) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		p.apply(at(sample.KindStart, e.Position))
	}
}

func (p *SignaturePad) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		p.apply(sample.Event{Kind: sample.KindEnd})
	}
}

func (p *SignaturePad) Dragged(e *fyne.DragEvent) {
	p.apply(at(sample.KindMove, e.Position))
}

func (p *SignaturePad) DragEnd() {
	p.apply(sample.Event{Kind: sample.KindEnd})
}

func (p *SignaturePad) MouseIn(*desktop.MouseEvent)    {}
func (p *SignaturePad) MouseMoved(*desktop.MouseEvent) {}

func (p *SignaturePad) MouseOut() {
	p.apply(sample.Event{Kind: sample.KindLeave})
}

func (p *SignaturePad) TouchDown(e *mobile.TouchEvent) {
	p.apply(sample.Event{Kind: sample.KindStart, Touches: []sample.Point{point(e.Position)}})
}

func (p *SignaturePad) TouchUp(*mobile.TouchEvent) {
	p.apply(sample.Event{Kind: sample.KindEnd})
}

func (p *SignaturePad) TouchCancel(*mobile.TouchEvent) {
	p.apply(sample.Event{Kind: sample.KindLeave})
}

func (p *SignaturePad) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.image)
}

func (p *SignaturePad) apply(ev sample.Event) {
	if _, err := p.session.Apply(ev); err != nil {
		logging.Logger().Warn("[pad] event dropped", "kind", ev.Kind, "err", err)
		return
	}
	if ev.Kind == sample.KindMove || ev.Kind == sample.KindClear {
		p.image.Image = p.session.Image()
		p.image.Refresh()
	}
	if has := p.session.HasContent(); has != p.content {
		p.content = has
		if p.OnContentChanged != nil {
			p.OnContentChanged(has)
		}
	}
}

func at(kind sample.Kind, pos fyne.Position) sample.Event {
	pt := point(pos)
	return sample.Event{Kind: kind, Pointer: &pt}
}

func point(pos fyne.Position) sample.Point {
	return sample.Point{X: float64(pos.X), Y: float64(pos.Y)}
}
