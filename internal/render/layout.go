package render

import (
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/mmynk/invoicer/internal/models"
)

type rgb struct{ r, g, b int }

var (
	colorDark   = rgb{17, 24, 39}
	colorMuted  = rgb{107, 114, 128}
	colorBody   = rgb{55, 65, 81}
	colorHeadBg = rgb{243, 244, 246}
	colorBorder = rgb{229, 231, 235}
	colorRule   = rgb{209, 213, 219}
)

// Column widths of the item table as fractions of the content width.
var columns = [4]float64{0.46, 0.14, 0.20, 0.20}

// layout carries the state of one Render call.
type layout struct {
	*Renderer
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	cur   string
	pageW float64
	pageH float64
	width float64
}

func (l *layout) color(c rgb) {
	l.pdf.SetTextColor(c.r, c.g, c.b)
}

func (l *layout) setFont(style string, size float64) {
	l.pdf.SetFont(l.font, style, size)
}

func (l *layout) cell(w, h float64, txt, align string) {
	l.pdf.CellFormat(w, h, l.tr(txt), "", 0, align, false, 0, "")
}

func (l *layout) amount(v float64) string {
	return l.cur + l.money.Number(v)
}

func (l *layout) header(inv models.Invoice) {
	l.setFont("B", 36)
	l.color(colorDark)
	l.pdf.SetXY(margin, margin)
	l.cell(l.width, 44, docLabel(inv), "C")
	l.pdf.Ln(64)
}

// labelled draws a bold label followed by a regular value, aligned left or
// right within the content area.
func (l *layout) labelled(label, value string, right bool) {
	y := l.pdf.GetY()
	l.setFont("B", 10)
	lw := l.pdf.GetStringWidth(l.tr(label))
	l.setFont("", 10)
	vw := l.pdf.GetStringWidth(l.tr(value))

	x := margin
	if right {
		x = margin + l.width - lw - vw
	}
	l.pdf.SetXY(x, y)
	l.setFont("B", 10)
	l.color(colorDark)
	l.cell(lw, 14, label, "L")
	l.setFont("", 10)
	l.color(colorMuted)
	l.cell(vw, 14, value, "L")
	l.pdf.SetY(y)
}

func (l *layout) meta(inv models.Invoice) {
	date := ""
	if !inv.IssueDate.IsZero() {
		date = l.money.Date(inv.IssueDate)
	}
	l.labelled("Date: ", date, false)
	l.labelled("INVOICE NO. ", strconv.FormatInt(inv.InvoiceNumber, 10), true)
	l.pdf.Ln(34)
}

func (l *layout) parties(inv models.Invoice) {
	top := l.pdf.GetY()
	half := l.width * 0.48

	l.setFont("B", 12)
	l.color(colorDark)
	l.pdf.SetXY(margin, top)
	l.cell(half, 16, "Billed To:", "L")
	l.pdf.SetXY(margin+l.width-half, top)
	l.cell(half, 16, "From:", "R")

	l.setFont("", 11)
	l.color(colorBody)
	l.pdf.SetXY(margin, top+22)
	l.pdf.MultiCell(half, 15, l.tr(inv.CustomerDetails), "", "L", false)
	leftBottom := l.pdf.GetY()

	l.pdf.SetXY(margin+l.width-half, top+22)
	l.pdf.MultiCell(half, 15, l.tr(inv.SellerDetails), "", "R", false)
	rightBottom := l.pdf.GetY()

	l.pdf.SetY(max(leftBottom, rightBottom) + 20)
}

func (l *layout) tableHeader() {
	y := l.pdf.GetY()
	l.pdf.SetFillColor(colorHeadBg.r, colorHeadBg.g, colorHeadBg.b)
	l.pdf.Rect(margin, y, l.width, 26, "F")

	l.setFont("B", 11)
	l.color(colorBody)
	l.row(y, 26, [4]string{"Item", "Quantity", "Price", "Amount"})
	l.pdf.SetY(y + 26)
}

// row draws one table row of the given height starting at y.
func (l *layout) row(y, h float64, cells [4]string) {
	aligns := [4]string{"L", "C", "R", "R"}
	x := margin
	for i, txt := range cells {
		w := l.width * columns[i]
		l.pdf.SetXY(x, y)
		if i == 0 {
			l.pdf.SetX(x + 8)
			w -= 8
		}
		if i == 3 {
			w -= 8
		}
		l.cell(w, h, txt, aligns[i])
		x += l.width * columns[i]
	}
}

func (l *layout) rule(y float64, c rgb) {
	l.pdf.SetDrawColor(c.r, c.g, c.b)
	l.pdf.SetLineWidth(1)
	l.pdf.Line(margin, y, margin+l.width, y)
}

func (l *layout) table(items []models.Item) {
	l.tableHeader()
	l.setFont("", 11)
	l.color(colorBody)

	if len(items) == 0 {
		y := l.pdf.GetY()
		l.row(y, 30, [4]string{"No items", "-", "-", "-"})
		l.rule(y+30, colorHeadBg)
		l.pdf.SetY(y + 30)
		return
	}

	descW := l.width*columns[0] - 16
	for _, item := range items {
		lines := l.pdf.SplitLines([]byte(l.tr(item.Description)), descW)
		if len(lines) == 0 {
			lines = [][]byte{nil}
		}
		h := float64(len(lines))*14 + 16

		y := l.pdf.GetY()
		if y+h > l.pageH-margin {
			l.pdf.AddPage()
			l.pdf.SetY(margin)
			l.tableHeader()
			l.setFont("", 11)
			l.color(colorBody)
			y = l.pdf.GetY()
		}

		l.row(y, h, [4]string{
			"",
			formatQuantity(item.Quantity),
			l.amount(item.UnitPrice),
			l.amount(item.LineAmount),
		})
		for i, line := range lines {
			l.pdf.SetXY(margin+8, y+8+float64(i)*14)
			l.pdf.CellFormat(descW, 14, string(line), "", 0, "L", false, 0, "")
		}
		l.rule(y+h, colorHeadBg)
		l.pdf.SetY(y + h)
	}
}

type totalLine struct {
	label  string
	amount float64
}

func (l *layout) totals(inv models.Invoice) {
	lines := []totalLine{{"SubTotal", inv.SubTotal}}
	if inv.DiscountPercent > 0 {
		lines = append(lines, totalLine{"Discount " + formatPercent(inv.DiscountPercent) + "%", inv.DiscountAmount})
	}
	if inv.TaxPercent > 0 {
		lines = append(lines, totalLine{"Tax " + formatPercent(inv.TaxPercent) + "%", inv.TaxAmount})
	}
	if inv.ShippingCharge > 0 {
		lines = append(lines, totalLine{"Shipping Charges", inv.ShippingCharge})
	}

	need := float64(len(lines))*18 + 60
	if l.pdf.GetY()+need > l.pageH-margin {
		l.pdf.AddPage()
		l.pdf.SetY(margin)
	}

	y := l.pdf.GetY()
	l.rule(y, colorBorder)
	y += 14

	half := l.width / 2
	x := margin + half
	inner := half - 8

	l.setFont("", 11)
	l.color(colorBody)
	for _, line := range lines {
		l.pdf.SetXY(x, y)
		l.cell(inner/2, 14, line.label, "L")
		l.cell(inner/2, 14, l.amount(line.amount), "R")
		y += 18
	}

	y += 4
	l.pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	l.pdf.Line(x, y, x+inner, y)
	y += 8

	l.setFont("B", 13)
	l.color(colorDark)
	l.pdf.SetXY(x, y)
	l.cell(inner/2, 16, "Total Amount", "L")
	l.cell(inner/2, 16, l.amount(inv.TotalAmount), "R")
	l.pdf.SetY(y + 36)
}

func (l *layout) footer(inv models.Invoice) {
	if l.pdf.GetY()+40 > l.pageH-margin {
		l.pdf.AddPage()
		l.pdf.SetY(margin)
	}

	method := string(inv.PaymentMethod)
	if method == "" {
		method = "Not specified"
	}

	l.pdf.SetX(margin)
	l.footerLine("Payment method: ", method)
	l.pdf.Ln(20)
	l.pdf.SetX(margin)
	l.footerLine("Note: ", l.note)
}

func (l *layout) footerLine(label, value string) {
	l.setFont("B", 11)
	l.color(colorDark)
	lw := l.pdf.GetStringWidth(l.tr(label))
	l.cell(lw, 14, label, "L")
	l.setFont("", 11)
	l.color(colorBody)
	l.cell(l.width-lw, 14, value, "L")
}
