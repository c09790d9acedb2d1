// Package export writes dashboard listings to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/money"
)

const sheet = "Invoices"

var header = []interface{}{"Invoice No.", "Type", "Customer", "Status", "Issue Date", "Total", "Currency", "Last Updated"}

// ContentType is the MIME type of the files WriteXLSX produces.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes one row per invoice summary, in the given order, to w.
// Customer details are cut to their first line.
func WriteXLSX(w io.Writer, summaries []models.InvoiceSummary, f *money.Formatter) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amount, err := x.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := x.SetCellStyle(sheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, s := range summaries {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{
			s.InvoiceNumber,
			string(s.DocumentType),
			firstLine(s.CustomerDetails),
			string(s.PaymentStatus),
			f.Date(s.IssueDate),
			money.Round(s.TotalAmount).InexactFloat64(),
			f.Currency(),
			time.Unix(s.UpdatedAt, 0).UTC().Format(time.RFC3339),
		}
		if err := x.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		totalCell, _ := excelize.CoordinatesToCellName(6, row)
		if err := x.SetCellStyle(sheet, totalCell, totalCell, amount); err != nil {
			return fmt.Errorf("style row %d: %w", row, err)
		}
	}

	if err := x.SetColWidth(sheet, "C", "C", 40); err != nil {
		return err
	}
	if err := x.SetColWidth(sheet, "E", "H", 16); err != nil {
		return err
	}

	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
