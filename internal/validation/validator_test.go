package validation

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/bajatenis/sales-reconciler/internal/config"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheetWith(headers []string, rows ...map[string]string) *types.RawSheet {
	sheet := &types.RawSheet{Headers: headers}
	for i, cells := range rows {
		sheet.Rows = append(sheet.Rows, types.RawRow{Number: i + 2, Cells: cells})
	}
	return sheet
}

var headers = []string{"Fecha", "Total", "Metodo de Pago", "Descripcion"}

func TestCheckRequiredFields(t *testing.T) {
	cols := config.Default().Columns

	assert.NoError(t, CheckRequiredFields([]string{" fecha", "TOTAL", "metodo de pago", "Descripcion", "Extra"}, cols))

	err := CheckRequiredFields([]string{"Fecha", "Importe"}, cols)
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Total", "Metodo de Pago", "Descripcion"}, missing.Fields)
	assert.Contains(t, err.Error(), "Metodo de Pago")
}

func TestParseTransactions(t *testing.T) {
	sheet := sheetWith(headers,
		map[string]string{"Fecha": "2024-03-09", "Total": "$1,250.50", "Metodo de Pago": "Tarjeta de Debito", "Descripcion": "1 x Renta de Cancha, Toalla"},
		map[string]string{"Fecha": "45361", "Total": "30", "Metodo de Pago": "efectivo", "Descripcion": ""},
	)

	txs, err := ParseTransactions(sheet, config.Default())
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, 2, txs[0].Row)
	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 9}, txs[0].Date)
	assert.True(t, txs[0].Total.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, types.PaymentCard, txs[0].PaymentMethod)
	assert.Equal(t, "1 x Renta de Cancha, Toalla", txs[0].Description)

	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 10}, txs[1].Date)
	assert.Equal(t, types.PaymentCash, txs[1].PaymentMethod)
}

func TestParseTransactions_MissingColumnStopsBeforeRows(t *testing.T) {
	sheet := sheetWith([]string{"Fecha", "Total", "Descripcion"},
		map[string]string{"Fecha": "not a date", "Total": "x", "Descripcion": "Snickers"},
	)

	txs, err := ParseTransactions(sheet, config.Default())
	assert.Nil(t, txs)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Metodo de Pago"}, missing.Fields)
}

func TestParseTransactions_BadTotalAbortsBatch(t *testing.T) {
	sheet := sheetWith(headers,
		map[string]string{"Fecha": "2024-03-09", "Total": "650", "Metodo de Pago": "Tarjeta", "Descripcion": "Renta de Cancha"},
		map[string]string{"Fecha": "2024-03-09", "Total": "abc", "Metodo de Pago": "Tarjeta", "Descripcion": "Snickers"},
	)

	txs, err := ParseTransactions(sheet, config.Default())
	assert.Nil(t, txs)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, "Total", rowErr.Field)
	assert.Equal(t, "abc", rowErr.Value)
}

func TestParseDate(t *testing.T) {
	layouts := config.Default().DateFormats

	tests := []struct {
		value string
		want  civil.Date
	}{
		{"2024-03-09", civil.Date{Year: 2024, Month: 3, Day: 9}},
		{"2024-03-09 18:45:00", civil.Date{Year: 2024, Month: 3, Day: 9}},
		{"09/03/2024", civil.Date{Year: 2024, Month: 3, Day: 9}},
		{"45360", civil.Date{Year: 2024, Month: 3, Day: 9}},
		{"45360.75", civil.Date{Year: 2024, Month: 3, Day: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseDate(tt.value, layouts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDate("", layouts)
	assert.Error(t, err)
	_, err = ParseDate("ayer", layouts)
	assert.Error(t, err)
}

func TestParseTotal(t *testing.T) {
	got, err := ParseTotal(" $ 2,400.00 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(2400)))

	_, err = ParseTotal("")
	assert.Error(t, err)
	_, err = ParseTotal("doce")
	assert.Error(t, err)
}

func TestNormalizePayment(t *testing.T) {
	aliases := map[string]types.PaymentMethod{"contactless": types.PaymentCard}

	assert.Equal(t, types.PaymentCard, NormalizePayment("TARJETA", aliases))
	assert.Equal(t, types.PaymentCard, NormalizePayment("Tarjeta de Credito", aliases))
	assert.Equal(t, types.PaymentCard, NormalizePayment(" Contactless ", aliases))
	assert.Equal(t, types.PaymentCash, NormalizePayment("efectivo", aliases))
	assert.Equal(t, types.PaymentMethod("Transferencia"), NormalizePayment(" Transferencia", aliases))
}
