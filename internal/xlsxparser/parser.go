// =============================================================================
// Sales Reconciler - XLSX Parser Module
// =============================================================================
//
// This module reads point-of-sale exports saved as Excel workbooks.
//
// EXPECTED LAYOUT:
//
//   | Fecha      | Total | Metodo de Pago | Descripcion                  |
//   |------------|-------|----------------|------------------------------|
//   | 2024-03-09 | 650   | Tarjeta        | 1 x Renta de Cancha, Toalla  |
//   | 45361      | 30    | Efectivo       | Agua 1 lt                    |
//
//   Row 1 holds the headers, data starts on row 2. Column order does not
//   matter; columns are looked up by header name.
//
// RAW VALUES:
//   Cells are read unformatted, so a date cell comes back as its Excel serial
//   number ("45361") and a currency cell as a plain number. The validation
//   module converts both.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the given sheet of an XLSX file.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - sheetName: The worksheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - The parsed sheet.
//   - An error if the file cannot be opened or the sheet does not exist.
func Parse(filePath string, sheetName string) (*types.RawSheet, error) {
	f, err := excelize.OpenFile(filePath, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := parseFile(f, sheetName)
	if err != nil {
		return nil, err
	}

	sheet.SourceFile = filePath
	return sheet, nil
}

// ParseReader reads the given sheet of an XLSX stream.
func ParseReader(r io.Reader, sheetName string) (*types.RawSheet, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, sheetName)
}

// parseFile reads one sheet of an open workbook.
func parseFile(f *excelize.File, sheetName string) (*types.RawSheet, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", sheetName, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = strings.TrimSpace(cell)
	}

	sheet := &types.RawSheet{
		Headers: headers,
		Rows:    make([]types.RawRow, 0, len(rows)-1),
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		cells := make(map[string]string, len(headers))
		for col, header := range headers {
			if header == "" {
				continue
			}
			if col < len(row) {
				cells[header] = strings.TrimSpace(row[col])
			} else {
				cells[header] = ""
			}
		}

		sheet.Rows = append(sheet.Rows, types.RawRow{Number: i + 1, Cells: cells})
	}

	return sheet, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
