package xlsxwriter

import (
	"bytes"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/bajatenis/sales-reconciler/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() report.Report {
	day := civil.Date{Year: 2024, Month: 3, Day: 9}
	return report.Report{
		Mapped: report.MappedSalesSummary{
			Columns: report.MappedColumns,
			Records: []report.MappedRecord{
				{
					StartDate:      day,
					Product:        "Renta de Cancha",
					Quantity:       decimal.NewFromInt(2),
					AmountTarjeta:  decimal.NewFromInt(650),
					AmountEfectivo: decimal.NewFromInt(650),
				},
			},
			Totals: report.TotalsRecord{
				TotalProducts: 1,
				TotalTarjeta:  decimal.NewFromInt(650),
				TotalEfectivo: decimal.NewFromInt(650),
			},
		},
		Unmapped: report.UnmappedItems{
			Columns: report.UnmappedColumns,
			Records: []report.UnmappedRecord{
				{
					Date:           day,
					Product:        "Toalla",
					AmountTarjeta:  decimal.NewNullDecimal(decimal.RequireFromString("33.3333")),
					AmountEfectivo: decimal.NewNullDecimal(decimal.Zero),
				},
				{
					Date:           day,
					Product:        "Gorra",
					AmountTarjeta:  decimal.NullDecimal{},
					AmountEfectivo: decimal.NewNullDecimal(decimal.Zero),
				},
			},
			Totals: report.TotalsRecord{
				TotalProducts: 2,
				TotalTarjeta:  decimal.RequireFromString("33.3333"),
				TotalEfectivo: decimal.Zero,
			},
		},
	}
}

func rawValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reporte.xlsx")
	require.NoError(t, Write(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MappedSheet, UnmappedSheet}, f.GetSheetList())

	// Mapped sheet: header, one product, totals.
	assert.Equal(t, "start_date", rawValue(t, f, MappedSheet, "A1"))
	assert.Equal(t, "amount_Efectivo", rawValue(t, f, MappedSheet, "E1"))
	assert.Equal(t, "2024-03-09", rawValue(t, f, MappedSheet, "A2"))
	assert.Equal(t, "Renta de Cancha", rawValue(t, f, MappedSheet, "B2"))
	assert.Equal(t, "2", rawValue(t, f, MappedSheet, "C2"))
	assert.Equal(t, "650", rawValue(t, f, MappedSheet, "D2"))
	assert.Equal(t, TotalsLabel, rawValue(t, f, MappedSheet, "A3"))
	assert.Equal(t, "1", rawValue(t, f, MappedSheet, "B3"))
	assert.Equal(t, "", rawValue(t, f, MappedSheet, "C3"))
	assert.Equal(t, "650", rawValue(t, f, MappedSheet, "E3"))

	// Unmapped sheet: money rounded, unknown price blank.
	assert.Equal(t, "Toalla", rawValue(t, f, UnmappedSheet, "B2"))
	assert.Equal(t, "33.33", rawValue(t, f, UnmappedSheet, "C2"))
	assert.Equal(t, "0", rawValue(t, f, UnmappedSheet, "D2"))
	assert.Equal(t, "Gorra", rawValue(t, f, UnmappedSheet, "B3"))
	assert.Equal(t, "", rawValue(t, f, UnmappedSheet, "C3"))
	assert.Equal(t, TotalsLabel, rawValue(t, f, UnmappedSheet, "A4"))
	assert.Equal(t, "2", rawValue(t, f, UnmappedSheet, "B4"))
	assert.Equal(t, "33.33", rawValue(t, f, UnmappedSheet, "C4"))
}

func TestWriteTo_EmptyReport(t *testing.T) {
	empty := report.Report{
		Mapped:   report.MappedSalesSummary{Columns: report.MappedColumns},
		Unmapped: report.UnmappedItems{Columns: report.UnmappedColumns},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, empty))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "product", rawValue(t, f, MappedSheet, "B1"))
	assert.Equal(t, TotalsLabel, rawValue(t, f, MappedSheet, "A2"))
	assert.Equal(t, "0", rawValue(t, f, MappedSheet, "B2"))
	assert.Equal(t, "0", rawValue(t, f, UnmappedSheet, "C2"))
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(nil))
	assert.Equal(t, "2024-01-02", cellValue(civil.Date{Year: 2024, Month: 1, Day: 2}))
	assert.Equal(t, 1.01, cellValue(decimal.RequireFromString("1.005")))
	assert.Equal(t, "x", cellValue("x"))
}
