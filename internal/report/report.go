// Package report shapes the aggregator's summary into the two output tables
// handed to the exporter. It selects and renames columns only; every number
// is computed by the aggregator.
package report

import (
	"cloud.google.com/go/civil"
	"github.com/bajatenis/sales-reconciler/internal/aggregator"
	"github.com/shopspring/decimal"
)

// Column names of the Mapped Sales Summary table.
var MappedColumns = []string{"start_date", "product", "quantity", "amount_Tarjeta", "amount_Efectivo"}

// Column names of the Unmapped Items table.
var UnmappedColumns = []string{"date", "product", "amount_Tarjeta", "amount_Efectivo"}

// MappedRecord is one row of the Mapped Sales Summary.
type MappedRecord struct {
	StartDate      civil.Date
	Product        string
	Quantity       decimal.Decimal
	AmountTarjeta  decimal.Decimal
	AmountEfectivo decimal.Decimal
}

// Values returns the record in column order.
func (r MappedRecord) Values() []any {
	return []any{r.StartDate, r.Product, r.Quantity, r.AmountTarjeta, r.AmountEfectivo}
}

// UnmappedRecord is one row of the Unmapped Items table. An invalid amount is
// an unknown price and is exported blank.
type UnmappedRecord struct {
	Date           civil.Date
	Product        string
	AmountTarjeta  decimal.NullDecimal
	AmountEfectivo decimal.NullDecimal
}

// Values returns the record in column order; a blank amount is nil.
func (r UnmappedRecord) Values() []any {
	return []any{r.Date, r.Product, nullable(r.AmountTarjeta), nullable(r.AmountEfectivo)}
}

// TotalsRecord closes each table.
type TotalsRecord struct {
	TotalProducts int
	TotalTarjeta  decimal.Decimal
	TotalEfectivo decimal.Decimal
}

// MappedSalesSummary is the first output table.
type MappedSalesSummary struct {
	Columns []string
	Records []MappedRecord
	Totals  TotalsRecord
}

// UnmappedItems is the second output table.
type UnmappedItems struct {
	Columns []string
	Records []UnmappedRecord
	Totals  TotalsRecord
}

// Report holds both tables of one batch.
type Report struct {
	Mapped   MappedSalesSummary
	Unmapped UnmappedItems
}

// Assemble packages an aggregator summary into the two output tables.
func Assemble(s aggregator.Summary) Report {
	mapped := MappedSalesSummary{
		Columns: MappedColumns,
		Records: make([]MappedRecord, 0, len(s.Products)),
		Totals:  totals(s.ProductTotals),
	}
	for _, row := range s.Products {
		mapped.Records = append(mapped.Records, MappedRecord{
			StartDate:      row.StartDate,
			Product:        row.Product,
			Quantity:       row.Quantity,
			AmountTarjeta:  row.AmountCard,
			AmountEfectivo: row.AmountCash,
		})
	}

	unmapped := UnmappedItems{
		Columns: UnmappedColumns,
		Records: make([]UnmappedRecord, 0, len(s.Unmapped)),
		Totals:  totals(s.UnmappedTotals),
	}
	for _, row := range s.Unmapped {
		unmapped.Records = append(unmapped.Records, UnmappedRecord{
			Date:           row.Date,
			Product:        row.Product,
			AmountTarjeta:  row.AmountCard,
			AmountEfectivo: row.AmountCash,
		})
	}

	return Report{Mapped: mapped, Unmapped: unmapped}
}

func totals(t aggregator.Totals) TotalsRecord {
	return TotalsRecord{
		TotalProducts: t.Products,
		TotalTarjeta:  t.Card,
		TotalEfectivo: t.Cash,
	}
}

func nullable(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}
