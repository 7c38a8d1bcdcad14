// =============================================================================
// Sales Reconciler - CSV Parser Module
// =============================================================================
//
// This module reads point-of-sale exports saved as CSV. It only splits the file
// into a header row and data rows; interpreting dates, totals and payment
// methods is the validation module's job.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - UTF-8 byte order mark stripped from the first header (Excel exports)
//   - Variable column counts tolerated; missing cells read as empty
//   - Empty rows skipped, row numbers kept for error messages
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bajatenis/sales-reconciler/internal/types"
)

// byteOrderMark is prepended to CSV files saved by Excel as "CSV UTF-8".
const byteOrderMark = "\ufeff"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its header and data rows.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - delimiter: The configured field delimiter.
//
// RETURNS:
//   - The parsed sheet.
//   - An error if the file cannot be read or has no header row.
func Parse(filePath string, delimiter string) (*types.RawSheet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	sheet, err := ParseReader(bufio.NewReader(file), delimiter)
	if err != nil {
		return nil, err
	}

	sheet.SourceFile = filePath
	return sheet, nil
}

// ParseReader reads CSV data from r.
func ParseReader(r io.Reader, delimiter string) (*types.RawSheet, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, delimiter)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])

	sheet := &types.RawSheet{
		Headers: headers,
		Rows:    make([]types.RawRow, 0, len(allRows)-1),
	}

	for i := 1; i < len(allRows); i++ {
		row := allRows[i]
		if isRowEmpty(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, toRawRow(i+1, headers, row))
	}

	return sheet, nil
}

// configureReader configures the CSV reader for the given delimiter.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Point-of-sale exports are not always strict CSV.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header cells and strips a leading byte order mark.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, byteOrderMark)
		}
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// toRawRow maps a row's cells to the headers. Cells beyond the header row are
// dropped; missing cells read as empty.
func toRawRow(number int, headers []string, row []string) types.RawRow {
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
	return types.RawRow{Number: number, Cells: cells}
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
