package export

import (
	"bytes"
	"testing"

	"github.com/erp/garment/internal/domain/report"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func samplePeriods() *report.PeriodPnL {
	d := decimal.RequireFromString
	return &report.PeriodPnL{
		Granularity:  report.GranularityQuarterly,
		RevenueBasis: report.RevenueBasisBestAvailable,
		Periods: []report.PeriodBucket{
			{
				PeriodKey:             "2025-Q1",
				POCount:               2,
				ActualPOCount:         1,
				TotalQty:              d("150"),
				EstRevenue:            d("1600"),
				ActualInvoicedRevenue: d("900"),
				BestAvailableRevenue:  d("1500"),
				TotalCosts:            d("1000"),
				EstProfit:             d("600"),
				EstMargin:             d("37.5"),
				Profit:                d("500"),
				Margin:                d("33.333333"),
			},
		},
		Totals: report.PeriodBucket{
			PeriodKey:            report.TotalsKey,
			POCount:              2,
			ActualPOCount:        1,
			EstRevenue:           d("1600"),
			BestAvailableRevenue: d("1500"),
			TotalCosts:           d("1000"),
			Profit:               d("500"),
			Margin:               d("33.333333"),
		},
		UndatedOrders: 3,
	}
}

func TestPeriodWorkbook_Layout(t *testing.T) {
	f, err := PeriodWorkbook(samplePeriods(), valueobject.USD)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PeriodSheet, NotesSheet}, f.GetSheetList())

	rows, err := f.GetRows(PeriodSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header, one period, totals")

	assert.Equal(t, PeriodHeaders, rows[0])
	assert.Equal(t, "2025-Q1", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
	assert.Equal(t, "1500", rows[1][6])
	assert.Equal(t, "33.33", rows[1][11])
	assert.Equal(t, report.TotalsKey, rows[2][0])
}

func TestPeriodWorkbook_Notes(t *testing.T) {
	f, err := PeriodWorkbook(samplePeriods(), valueobject.EUR)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(NotesSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "QUARTERLY", v)

	v, err = f.GetCellValue(NotesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "EUR", v)

	v, err = f.GetCellValue(NotesSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestPeriodWorkbookBytes_Readable(t *testing.T) {
	data, err := PeriodWorkbookBytes(samplePeriods(), valueobject.USD)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(PeriodSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "1600", v)
}

func TestPeriodWorkbook_EmptyPortfolio(t *testing.T) {
	p := &report.PeriodPnL{
		Granularity:  report.GranularityMonthly,
		RevenueBasis: report.RevenueBasisBestAvailable,
		Totals:       report.PeriodBucket{PeriodKey: report.TotalsKey},
	}
	f, err := PeriodWorkbook(p, valueobject.USD)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PeriodSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, report.TotalsKey, rows[1][0])
	assert.Equal(t, "0", rows[1][1])
}

func TestPeriodFileName(t *testing.T) {
	assert.Equal(t, "pnl_monthly.xlsx", PeriodFileName(report.GranularityMonthly))
	assert.Equal(t, "pnl_annual.xlsx", PeriodFileName(report.GranularityAnnual))
}
