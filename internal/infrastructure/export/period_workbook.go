// Package export renders P&L reports as spreadsheet workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/erp/garment/internal/domain/report"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the period workbook
const (
	PeriodSheet = "Period P&L"
	NotesSheet  = "Notes"
)

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PeriodHeaders are the column titles of the period sheet, in order
var PeriodHeaders = []string{
	"Period",
	"PO Count",
	"Invoiced PO Count",
	"Total Qty",
	"Est. Revenue",
	"Invoiced Revenue",
	"Best-Available Revenue",
	"Total Costs",
	"Est. Profit",
	"Est. Margin %",
	"Profit",
	"Margin %",
}

var columnWidths = []float64{12, 10, 18, 12, 16, 18, 22, 16, 16, 14, 16, 12}

// PeriodWorkbook builds a workbook with one row per period and a totals row
func PeriodWorkbook(p *report.PeriodPnL, baseCurrency valueobject.Currency) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", PeriodSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 1}},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, h := range PeriodHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(PeriodSheet, cell, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(PeriodHeaders))
	_ = f.SetCellStyle(PeriodSheet, "A1", lastCol+"1", headerStyle)

	row := 2
	for _, b := range p.Periods {
		if err := writeBucket(f, row, b); err != nil {
			_ = f.Close()
			return nil, err
		}
		row++
	}
	if err := writeBucket(f, row, p.Totals); err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.SetCellStyle(PeriodSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), totalStyle)

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(PeriodSheet, col, col, w)
	}
	_ = f.SetPanes(PeriodSheet, &excelize.Panes{Freeze: true, Split: false, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight"})

	if _, err := f.NewSheet(NotesSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	notes := [][2]any{
		{"Granularity", string(p.Granularity)},
		{"Base currency", baseCurrency.String()},
		{"Revenue basis", p.RevenueBasis},
		{"Revenue basis note", report.RevenueBasisDescription},
		{"Undated orders excluded", p.UndatedOrders},
	}
	for i, n := range notes {
		_ = f.SetCellValue(NotesSheet, fmt.Sprintf("A%d", i+1), n[0])
		_ = f.SetCellValue(NotesSheet, fmt.Sprintf("B%d", i+1), n[1])
	}
	_ = f.SetColWidth(NotesSheet, "A", "A", 24)
	_ = f.SetColWidth(NotesSheet, "B", "B", 90)

	f.SetActiveSheet(0)
	return f, nil
}

func writeBucket(f *excelize.File, row int, b report.PeriodBucket) error {
	values := []any{
		b.PeriodKey,
		b.POCount,
		b.ActualPOCount,
		number(b.TotalQty, valueobject.MoneyPlaces),
		number(b.EstRevenue, valueobject.MoneyPlaces),
		number(b.ActualInvoicedRevenue, valueobject.MoneyPlaces),
		number(b.BestAvailableRevenue, valueobject.MoneyPlaces),
		number(b.TotalCosts, valueobject.MoneyPlaces),
		number(b.EstProfit, valueobject.MoneyPlaces),
		number(b.EstMargin, valueobject.PercentPlaces),
		number(b.Profit, valueobject.MoneyPlaces),
		number(b.Margin, valueobject.PercentPlaces),
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(PeriodSheet, cell, &values)
}

func number(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}

// PeriodWorkbookBytes renders the workbook into an in-memory xlsx file
func PeriodWorkbookBytes(p *report.PeriodPnL, baseCurrency valueobject.Currency) ([]byte, error) {
	f, err := PeriodWorkbook(p, baseCurrency)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// PeriodFileName returns the download name for a period export
func PeriodFileName(g report.Granularity) string {
	return fmt.Sprintf("pnl_%s.xlsx", strings.ToLower(string(g)))
}
