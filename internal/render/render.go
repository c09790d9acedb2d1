// Package render turns an invoice into a one-page PDF document.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/money"
)

// ErrRender is returned (wrapped) whenever a document could not be produced.
// No partial document is ever returned alongside it.
var ErrRender = errors.New("render invoice")

const (
	defaultFont = "Helvetica"
	thankYou    = "Thank you for choosing us!"
	margin      = 48.0
)

// Renderer produces PDF bytes from invoices. It only holds configuration, so
// one Renderer may serve concurrent calls.
type Renderer struct {
	money    *money.Formatter
	font     string
	compress bool
	note     string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCompression toggles content stream compression. Tests turn it off to
// inspect the drawn text.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// WithFont selects one of the core PDF font families.
func WithFont(family string) Option {
	return func(r *Renderer) { r.font = family }
}

// WithNote replaces the closing note printed under the payment method.
func WithNote(note string) Option {
	return func(r *Renderer) { r.note = note }
}

// New creates a Renderer that formats amounts and dates with f.
func New(f *money.Formatter, opts ...Option) *Renderer {
	r := &Renderer{
		money:    f,
		font:     defaultFont,
		compress: true,
		note:     thankYou,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out inv on an A4 page and returns the PDF bytes. Totals are
// recomputed from the items first; whatever derived values inv carries are
// ignored.
func (r *Renderer) Render(inv models.Invoice) (out []byte, err error) {
	if r.money == nil {
		return nil, fmt.Errorf("%w: no money formatter configured", ErrRender)
	}

	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRender, p)
		}
	}()

	inv = calculator.Recalculate(inv)

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCreationDate(creationDate(inv))
	pdf.SetModificationDate(creationDate(inv))
	pdf.SetCatalogSort(true)
	pdf.SetTitle(fmt.Sprintf("%s %d", docLabel(inv), inv.InvoiceNumber), true)
	pdf.SetCreator("invoicer", true)

	l := &layout{
		Renderer: r,
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		cur:      r.money.PDFSymbol(),
	}
	pdf.AddPage()
	l.pageW, l.pageH = pdf.GetPageSize()
	l.width = l.pageW - 2*margin

	l.header(inv)
	l.meta(inv)
	l.parties(inv)
	l.table(inv.Items)
	l.totals(inv)
	l.footer(inv)

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrRender, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func docLabel(inv models.Invoice) string {
	if inv.DocumentType == "" {
		return "INVOICE"
	}
	return string(inv.DocumentType)
}

// creationDate pins the PDF metadata to the issue date so that rendering the
// same invoice twice yields the same document.
func creationDate(inv models.Invoice) time.Time {
	if inv.IssueDate.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return inv.IssueDate.UTC()
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(money.Round(p).InexactFloat64(), 'f', -1, 64)
}
