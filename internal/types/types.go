// =============================================================================
// Sales Reconciler - Shared Types
// =============================================================================
//
// This package contains the types shared by the reconciliation engine and the
// ingestion/export layers. Keeping them here avoids import cycles between:
//   - validation (produces Transactions)
//   - matcher / reconciler (produce LineItems)
//   - aggregator / report (consume LineItems)
//
// =============================================================================

package types

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT METHODS
// =============================================================================

// PaymentMethod is the normalized payment method of a transaction.
type PaymentMethod string

const (
	// PaymentCard covers every card variant (credit, debit, contactless, chip).
	PaymentCard PaymentMethod = "Tarjeta"

	// PaymentCash is a cash payment.
	PaymentCash PaymentMethod = "Efectivo"
)

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// Transaction is one point-of-sale receipt row.
// It is immutable once read.
type Transaction struct {
	// Row is the 1-indexed row number in the source file.
	// Used for log and error messages only.
	Row int

	// Date is the calendar date of the sale.
	Date civil.Date

	// Total is the amount recorded by the point of sale for the whole receipt.
	Total decimal.Decimal

	// PaymentMethod is already normalized (see validation.NormalizePayment).
	PaymentMethod PaymentMethod

	// Description is the raw, comma separated list of purchased items.
	Description string
}

// LineItem is a single item parsed out of a transaction description.
type LineItem struct {
	// ProductName is the trimmed item name (the raw token when unparsable).
	ProductName string

	// Quantity defaults to 1 when the token carries no quantity marker.
	Quantity decimal.Decimal

	// UnitPrice is valid when the catalog knows the product or when the
	// residual reconciliation priced it.
	UnitPrice decimal.NullDecimal

	// LineTotal is the extended price. For catalog items it is
	// Quantity * UnitPrice; for a reconciled item it is the residual total.
	LineTotal decimal.NullDecimal

	// Mapped reports whether the matcher found ProductName in the catalog.
	Mapped bool

	PaymentMethod    PaymentMethod
	TransactionDate  civil.Date
	TransactionTotal decimal.Decimal
	TransactionRow   int
}

// Priced reports whether the item's unit price is known.
func (li LineItem) Priced() bool {
	return li.UnitPrice.Valid
}

// WithPrice returns a copy of the item priced at unitPrice with the given
// extended total.
func (li LineItem) WithPrice(unitPrice, lineTotal decimal.Decimal) LineItem {
	li.UnitPrice = decimal.NewNullDecimal(unitPrice)
	li.LineTotal = decimal.NewNullDecimal(lineTotal)
	return li
}

// =============================================================================
// RAW INPUT TYPES
// =============================================================================

// RawSheet is a parsed input file before any field is interpreted.
type RawSheet struct {
	// SourceFile is the path the sheet was read from.
	SourceFile string

	// Headers are the trimmed header cells of the first row.
	Headers []string

	// Rows are the non-empty data rows.
	Rows []RawRow
}

// RawRow is one data row keyed by header.
type RawRow struct {
	// Number is the 1-indexed row number in the source file.
	Number int

	// Cells maps each header to its trimmed cell value.
	Cells map[string]string
}
