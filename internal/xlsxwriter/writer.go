// =============================================================================
// Sales Reconciler - XLSX Writer
// =============================================================================
//
// This module writes a report.Report as an Excel workbook:
//   - Sheet "Productos":   Mapped Sales Summary + totals row
//   - Sheet "No Mapeados": Unmapped Items + totals row
//
// CELL CONVENTIONS:
//   - Dates are written as text in YYYY-MM-DD form
//   - Money is written as a number rounded to 2 decimals (format "0.00")
//   - An unknown price is left as an empty cell, never as 0
//
// Rounding happens here and nowhere else; every value upstream keeps full
// decimal precision.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"

	"cloud.google.com/go/civil"
	"github.com/bajatenis/sales-reconciler/internal/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the generated workbook.
const (
	MappedSheet   = "Productos"
	UnmappedSheet = "No Mapeados"
)

// TotalsLabel is written in the first cell of each totals row.
const TotalsLabel = "TOTAL"

// moneyPlaces is the number of decimals kept when writing money.
const moneyPlaces = 2

// moneyNumFmt is the built-in Excel number format "0.00".
const moneyNumFmt = 2

// =============================================================================
// PUBLIC API
// =============================================================================

// Write builds the workbook for r and saves it to path.
//
// PARAMETERS:
//   - path: The destination .xlsx file.
//   - r: The assembled report.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(path string, r report.Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteTo builds the workbook for r and streams it to w.
func WriteTo(w io.Writer, r report.Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build returns an in-memory workbook for r. The caller closes it.
func Build(r report.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), MappedSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %s: %w", MappedSheet, err)
	}
	if _, err := f.NewSheet(UnmappedSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", UnmappedSheet, err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	mappedRows := make([][]any, 0, len(r.Mapped.Records))
	for _, rec := range r.Mapped.Records {
		mappedRows = append(mappedRows, rec.Values())
	}
	if err := writeTable(f, MappedSheet, moneyStyle, r.Mapped.Columns, mappedRows, r.Mapped.Totals); err != nil {
		f.Close()
		return nil, err
	}

	unmappedRows := make([][]any, 0, len(r.Unmapped.Records))
	for _, rec := range r.Unmapped.Records {
		unmappedRows = append(unmappedRows, rec.Values())
	}
	if err := writeTable(f, UnmappedSheet, moneyStyle, r.Unmapped.Columns, unmappedRows, r.Unmapped.Totals); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// =============================================================================
// TABLE WRITING
// =============================================================================

// writeTable writes a header row, one row per record and the totals row.
func writeTable(f *excelize.File, sheet string, moneyStyle int, columns []string, rows [][]any, totals report.TotalsRecord) error {
	for col, name := range columns {
		if err := setCell(f, sheet, col+1, 1, name); err != nil {
			return err
		}
	}

	for i, values := range rows {
		for col, value := range values {
			if err := setCell(f, sheet, col+1, i+2, cellValue(value)); err != nil {
				return err
			}
		}
	}

	totalsRow := len(rows) + 2
	totalsValues := totalsLine(columns, totals)
	for col, value := range totalsValues {
		if err := setCell(f, sheet, col+1, totalsRow, cellValue(value)); err != nil {
			return err
		}
	}

	for col, name := range columns {
		if !isMoneyColumn(name) {
			continue
		}
		cell, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColStyle(sheet, cell, moneyStyle); err != nil {
			return fmt.Errorf("failed to style column %s of %s: %w", name, sheet, err)
		}
	}

	return nil
}

// totalsLine lays out a totals record under the table's columns: the label
// in the first column, the product count under "product" and the sums under
// their amount columns.
func totalsLine(columns []string, totals report.TotalsRecord) []any {
	line := make([]any, len(columns))
	line[0] = TotalsLabel
	for i, name := range columns {
		switch name {
		case "product":
			line[i] = totals.TotalProducts
		case "amount_Tarjeta":
			line[i] = totals.TotalTarjeta
		case "amount_Efectivo":
			line[i] = totals.TotalEfectivo
		}
	}
	return line
}

func isMoneyColumn(name string) bool {
	return name == "amount_Tarjeta" || name == "amount_Efectivo"
}

// =============================================================================
// CELL CONVERSION
// =============================================================================

// cellValue converts a record value into what excelize should store.
// A nil result leaves the cell empty.
func cellValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case civil.Date:
		return v.String()
	case decimal.Decimal:
		return v.Round(moneyPlaces).InexactFloat64()
	default:
		return v
	}
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	if value == nil {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
	return nil
}
