// =============================================================================
// Sales Reconciler - Aggregator
// =============================================================================
//
// The aggregator reduces the reconciled line items of a whole batch into:
//   - one summary row per catalog product, amounts pivoted by payment method
//   - one detail row per item whose name is not a catalog product
//   - a totals record for each of the two
//
// CLASSIFICATION:
//   An item is "mapped" when its name is a catalog key. This is independent of
//   whether reconciliation priced it: an unknown item that got a residual price
//   is still listed as unmapped, with its computed price.
//
// ORDERING:
//   Summary rows follow the configured priority list, unlisted products after
//   it in lexicographic order. Detail rows keep input order.
//
// =============================================================================

package aggregator

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/bajatenis/sales-reconciler/internal/catalog"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// ProductRow is the sales summary of one catalog product.
type ProductRow struct {
	Product string

	// StartDate is the earliest transaction date the product was sold on.
	StartDate civil.Date

	// Quantity is summed across every payment method.
	Quantity decimal.Decimal

	AmountCard decimal.Decimal
	AmountCash decimal.Decimal

	// AmountOther collects sales paid with a method that is neither card nor
	// cash. It is not a report column.
	AmountOther decimal.Decimal
}

// UnmappedRow is one item whose name is not a catalog product.
type UnmappedRow struct {
	Date          civil.Date
	Product       string
	Quantity      decimal.Decimal
	PaymentMethod types.PaymentMethod

	// UnitPrice is invalid when reconciliation could not price the item.
	UnitPrice decimal.NullDecimal

	// AmountCard and AmountCash hold the unit price in the column of the
	// item's payment method and zero in the other. The matching column is
	// invalid (blank) when the price is unknown.
	AmountCard decimal.NullDecimal
	AmountCash decimal.NullDecimal

	// TransactionRow is the source row, kept for tracing.
	TransactionRow int
}

// Totals summarizes one output table.
type Totals struct {
	// Products is the number of rows in the table.
	Products int

	Card decimal.Decimal
	Cash decimal.Decimal
}

// Summary is everything the report assembler needs.
type Summary struct {
	Products      []ProductRow
	ProductTotals Totals

	Unmapped       []UnmappedRow
	UnmappedTotals Totals
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate classifies, groups and totals the line items of a batch.
func Aggregate(items []types.LineItem, cat *catalog.Catalog, priority *catalog.Priority) Summary {
	var mapped []types.LineItem
	var unmapped []types.LineItem

	for _, item := range items {
		if cat.Contains(item.ProductName) {
			mapped = append(mapped, item)
		} else {
			unmapped = append(unmapped, item)
		}
	}

	summary := Summary{
		Products: summarizeProducts(mapped, priority),
		Unmapped: listUnmapped(unmapped),
	}
	summary.ProductTotals = productTotals(summary.Products)
	summary.UnmappedTotals = unmappedTotals(summary.Unmapped)

	return summary
}

// summarizeProducts groups mapped items by product and pivots the payment
// method into amount columns.
func summarizeProducts(items []types.LineItem, priority *catalog.Priority) []ProductRow {
	byProduct := make(map[string]*ProductRow)

	for _, item := range items {
		row, exists := byProduct[item.ProductName]
		if !exists {
			row = &ProductRow{
				Product:     item.ProductName,
				StartDate:   item.TransactionDate,
				Quantity:    decimal.Zero,
				AmountCard:  decimal.Zero,
				AmountCash:  decimal.Zero,
				AmountOther: decimal.Zero,
			}
			byProduct[item.ProductName] = row
		}

		if item.TransactionDate.Before(row.StartDate) {
			row.StartDate = item.TransactionDate
		}

		row.Quantity = row.Quantity.Add(item.Quantity)

		amount := lineAmount(item)
		switch item.PaymentMethod {
		case types.PaymentCard:
			row.AmountCard = row.AmountCard.Add(amount)
		case types.PaymentCash:
			row.AmountCash = row.AmountCash.Add(amount)
		default:
			row.AmountOther = row.AmountOther.Add(amount)
		}
	}

	rows := make([]ProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return priority.Less(rows[i].Product, rows[j].Product)
	})

	return rows
}

// lineAmount returns the extended price of a priced item and zero otherwise.
func lineAmount(item types.LineItem) decimal.Decimal {
	if item.LineTotal.Valid {
		return item.LineTotal.Decimal
	}
	if item.UnitPrice.Valid {
		return item.Quantity.Mul(item.UnitPrice.Decimal)
	}
	return decimal.Zero
}

// listUnmapped emits one row per unmapped item, in input order.
func listUnmapped(items []types.LineItem) []UnmappedRow {
	rows := make([]UnmappedRow, 0, len(items))

	zero := decimal.NewNullDecimal(decimal.Zero)
	for _, item := range items {
		row := UnmappedRow{
			Date:           item.TransactionDate,
			Product:        item.ProductName,
			Quantity:       item.Quantity,
			PaymentMethod:  item.PaymentMethod,
			UnitPrice:      item.UnitPrice,
			AmountCard:     zero,
			AmountCash:     zero,
			TransactionRow: item.TransactionRow,
		}

		switch item.PaymentMethod {
		case types.PaymentCard:
			row.AmountCard = item.UnitPrice
		case types.PaymentCash:
			row.AmountCash = item.UnitPrice
		}

		rows = append(rows, row)
	}

	return rows
}

func productTotals(rows []ProductRow) Totals {
	totals := Totals{Products: len(rows), Card: decimal.Zero, Cash: decimal.Zero}
	for _, row := range rows {
		totals.Card = totals.Card.Add(row.AmountCard)
		totals.Cash = totals.Cash.Add(row.AmountCash)
	}
	return totals
}

func unmappedTotals(rows []UnmappedRow) Totals {
	totals := Totals{Products: len(rows), Card: decimal.Zero, Cash: decimal.Zero}
	for _, row := range rows {
		if row.AmountCard.Valid {
			totals.Card = totals.Card.Add(row.AmountCard.Decimal)
		}
		if row.AmountCash.Valid {
			totals.Cash = totals.Cash.Add(row.AmountCash.Decimal)
		}
	}
	return totals
}
