// =============================================================================
// Sales Reconciler - Validation Engine
// =============================================================================
//
// This module turns raw input rows into Transactions and enforces the input
// contract:
//   1. Sheet-level: every required column must be present
//      (MissingFieldsError, checked before any row is read)
//   2. Row-level: date and total must parse (RowError)
//
// ERROR HANDLING:
//   - Both error types are fatal for the file: the first one aborts parsing
//     and no transactions are returned. There is no partial result.
//   - Each error carries enough context (row, column, value) to fix the export.
//
// NORMALIZATION:
//   - Headers are matched case-insensitively after trimming
//   - Payment methods: card variants -> "Tarjeta", cash variants -> "Efectivo"
//   - Totals: "$1,250.00" -> 1250.00
//   - Dates: configured layouts, or Excel serial numbers from raw cells
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bajatenis/sales-reconciler/internal/config"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// MissingFieldsError reports required columns absent from the input header.
type MissingFieldsError struct {
	// Fields lists the missing column names in configuration order.
	Fields []string

	// Available lists the headers the file does have.
	Available []string
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required column(s): %s (found: %s)",
		strings.Join(e.Fields, ", "),
		strings.Join(e.Available, ", "),
	)
}

// RowError reports a row whose field could not be interpreted.
type RowError struct {
	// Row is the 1-indexed row number in the source file.
	Row int

	// Field is the column header.
	Field string

	// Value is the raw cell value.
	Value string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column '%s': %v (value: '%s')", e.Row, e.Field, e.Err, e.Value)
}

// Unwrap returns the underlying cause.
func (e *RowError) Unwrap() error {
	return e.Err
}

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

// resolvedColumns maps each required field to the header actually used in
// the file.
type resolvedColumns struct {
	date          string
	total         string
	paymentMethod string
	description   string
}

// CheckRequiredFields verifies that every configured column is present in
// headers. Matching ignores case and surrounding spaces.
func CheckRequiredFields(headers []string, columns config.Columns) error {
	_, err := resolveColumns(headers, columns)
	return err
}

func resolveColumns(headers []string, columns config.Columns) (resolvedColumns, error) {
	byKey := make(map[string]string, len(headers))
	for _, header := range headers {
		key := headerKey(header)
		if key == "" {
			continue
		}
		if _, exists := byKey[key]; !exists {
			byKey[key] = header
		}
	}

	var missing []string
	find := func(name string) string {
		header, ok := byKey[headerKey(name)]
		if !ok {
			missing = append(missing, name)
		}
		return header
	}

	resolved := resolvedColumns{
		date:          find(columns.Date),
		total:         find(columns.Total),
		paymentMethod: find(columns.PaymentMethod),
		description:   find(columns.Description),
	}

	if len(missing) > 0 {
		return resolvedColumns{}, &MissingFieldsError{Fields: missing, Available: headers}
	}
	return resolved, nil
}

func headerKey(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// =============================================================================
// ROW PARSING
// =============================================================================

// ParseTransactions validates a raw sheet and converts every row.
//
// PARAMETERS:
//   - sheet: The parsed input file.
//   - cfg: The configuration (column names, date layouts, payment aliases).
//
// RETURNS:
//   - The transactions in file order.
//   - A *MissingFieldsError or *RowError on the first problem found.
func ParseTransactions(sheet *types.RawSheet, cfg *config.MainConfig) ([]types.Transaction, error) {
	cols, err := resolveColumns(sheet.Headers, cfg.Columns)
	if err != nil {
		return nil, err
	}

	aliases := make(map[string]types.PaymentMethod, len(cfg.PaymentAliases))
	for alias, canonical := range cfg.PaymentAliases {
		aliases[strings.ToLower(strings.TrimSpace(alias))] = types.PaymentMethod(canonical)
	}

	transactions := make([]types.Transaction, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		tx, err := parseRow(row, cols, cfg.DateFormats, aliases)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// parseRow converts a single raw row.
func parseRow(row types.RawRow, cols resolvedColumns, dateFormats []string, aliases map[string]types.PaymentMethod) (types.Transaction, error) {
	rawDate := row.Cells[cols.date]
	date, err := ParseDate(rawDate, dateFormats)
	if err != nil {
		return types.Transaction{}, &RowError{Row: row.Number, Field: cols.date, Value: rawDate, Err: err}
	}

	rawTotal := row.Cells[cols.total]
	total, err := ParseTotal(rawTotal)
	if err != nil {
		return types.Transaction{}, &RowError{Row: row.Number, Field: cols.total, Value: rawTotal, Err: err}
	}

	return types.Transaction{
		Row:           row.Number,
		Date:          date,
		Total:         total,
		PaymentMethod: NormalizePayment(row.Cells[cols.paymentMethod], aliases),
		Description:   row.Cells[cols.description],
	}, nil
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

// ParseTotal parses a money amount, accepting a currency sign and thousands
// separators.
func ParseTotal(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("total is empty")
	}

	total, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total is not a number")
	}
	return total, nil
}

// ParseDate parses a date cell. A plain number is read as an Excel serial
// date; anything else is tried against layouts in order.
func ParseDate(value string, layouts []string) (civil.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return civil.Date{}, fmt.Errorf("date is empty")
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return civil.Date{}, fmt.Errorf("invalid Excel date serial: %w", err)
		}
		return civil.DateOf(t), nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return civil.DateOf(t), nil
		}
	}

	return civil.Date{}, fmt.Errorf("date does not match any of the layouts %s", strings.Join(layouts, ", "))
}

// NormalizePayment maps a raw payment method to "Tarjeta" or "Efectivo".
//
// LOOKUP ORDER:
//   1. the canonical names themselves (any case)
//   2. configured aliases (any case)
//   3. anything starting with "tarjeta" (e.g. "Tarjeta de Credito")
//
// Unrecognized values are returned trimmed but otherwise unchanged.
func NormalizePayment(value string, aliases map[string]types.PaymentMethod) types.PaymentMethod {
	trimmed := strings.TrimSpace(value)
	key := strings.ToLower(trimmed)

	switch key {
	case strings.ToLower(string(types.PaymentCard)):
		return types.PaymentCard
	case strings.ToLower(string(types.PaymentCash)):
		return types.PaymentCash
	}

	if canonical, ok := aliases[key]; ok {
		return canonical
	}

	if strings.HasPrefix(key, "tarjeta") {
		return types.PaymentCard
	}

	return types.PaymentMethod(trimmed)
}
