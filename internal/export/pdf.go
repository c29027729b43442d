// Package export renders a signed form as a PDF with the captured signature
// embedded in a signature box.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ErrNoSignature is returned when a form has no signature image.
var ErrNoSignature = errors.New("export: form has no signature")

// Field is one label/value row of the form summary.
type Field struct {
	Label string
	Value string
}

// Form is what gets written to the PDF.
type Form struct {
	Title     string
	Signer    string
	Reference string // session or submission id
	Fields    []Field
	SignedAt  time.Time
	Signature []byte // PNG
}

const (
	labelWidth = 50.0
	rowHeight  = 8.0
	sigWidth   = 80.0
	sigHeight  = 50.0
)

// WritePDF writes form as an A4 PDF to w.
func WritePDF(w io.Writer, form Form) error {
	if len(form.Signature) == 0 {
		return ErrNoSignature
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(form.Title, true)
	p.SetAuthor(form.Signer, true)
	p.SetSubject("Signed form "+form.Reference, true)
	if !form.SignedAt.IsZero() {
		p.SetCreationDate(form.SignedAt)
	}
	p.AddPage()
	tr := p.UnicodeTranslatorFromDescriptor("")

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 12, tr(form.Title), "", 1, "L", false, 0, "")
	p.Ln(2)

	p.SetFont("Helvetica", "", 11)
	p.SetDrawColor(200, 200, 200)
	for _, f := range form.Fields {
		p.SetFont("Helvetica", "B", 11)
		p.CellFormat(labelWidth, rowHeight, tr(f.Label), "B", 0, "L", false, 0, "")
		p.SetFont("Helvetica", "", 11)
		p.CellFormat(0, rowHeight, tr(f.Value), "B", 1, "L", false, 0, "")
	}
	p.Ln(8)

	p.SetFont("Helvetica", "B", 11)
	p.CellFormat(0, rowHeight, "Signature", "", 1, "L", false, 0, "")

	left, _, _, _ := p.GetMargins()
	top := p.GetY()
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	p.RegisterImageOptionsReader("signature", opts, bytes.NewReader(form.Signature))
	p.ImageOptions("signature", left, top, sigWidth, sigHeight, false, opts, 0, "")
	p.SetDrawColor(0, 0, 0)
	p.SetLineWidth(0.3)
	p.Rect(left, top, sigWidth, sigHeight, "D")
	p.SetY(top + sigHeight + 2)

	p.SetFont("Helvetica", "", 9)
	signed := "unsigned"
	if !form.SignedAt.IsZero() {
		signed = form.SignedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	p.CellFormat(0, 5, tr(fmt.Sprintf("%s - %s", form.Signer, signed)), "", 1, "L", false, 0, "")
	if form.Reference != "" {
		p.CellFormat(0, 5, "Ref: "+form.Reference, "", 1, "L", false, 0, "")
	}

	if err := p.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
