package processor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bajatenis/sales-reconciler/internal/config"
	"github.com/bajatenis/sales-reconciler/internal/logger"
	"github.com/bajatenis/sales-reconciler/internal/xlsxwriter"
	"github.com/bajatenis/sales-reconciler/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const ventasCSV = `Fecha,Total,Metodo de Pago,Descripcion
2024-03-09,650,Tarjeta,"1 x Renta de Cancha, Toalla"
2024-03-10,90,Efectivo,"2 x Agua 1 lt, Snickers"
2024-03-11,100,Tarjeta de Credito,"Gorra, Muñequera"
`

type fixture struct {
	cfg   *config.MainConfig
	files *utils.FileManager
	input string
}

func newFixture(t *testing.T, name, content string, archive bool) fixture {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "archive")
	cfg.ArchiveInputs = archive
	cfg.Workers = 2

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, archive)
	require.NoError(t, files.EnsureDirectories())

	input := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))

	return fixture{cfg: cfg, files: files, input: input}
}

func (f fixture) processor(t *testing.T) *Processor {
	t.Helper()
	cat, priority, err := f.cfg.BuildCatalog()
	require.NoError(t, err)
	return New(f.input, f.cfg, cat, priority, f.files)
}

func TestRun_CSVEndToEnd(t *testing.T) {
	fx := newFixture(t, "ventas.csv", ventasCSV, true)

	var logs bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&logs, "debug"))

	result := fx.processor(t).Run(ctx)
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.Equal(t, ProcessingStats{
		RowsRead:       3,
		Transactions:   3,
		LineItems:      6,
		Resolved:       1,
		Unresolved:     1,
		Products:       3,
		UnmappedItems:  3,
		ProcessingTime: result.Stats.ProcessingTime,
	}, result.Stats)

	mapped := result.Report.Mapped.Records
	require.Len(t, mapped, 3)
	assert.Equal(t, "Renta de Cancha", mapped[0].Product)
	assert.True(t, mapped[0].AmountTarjeta.Equal(decimal.NewFromInt(650)))
	assert.Equal(t, "Agua 1 lt", mapped[1].Product)
	assert.True(t, mapped[1].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, mapped[1].AmountEfectivo.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "Snickers", mapped[2].Product)

	unmapped := result.Report.Unmapped.Records
	require.Len(t, unmapped, 3)
	assert.Equal(t, "Toalla", unmapped[0].Product)
	assert.True(t, unmapped[0].AmountTarjeta.Valid)
	assert.True(t, unmapped[0].AmountTarjeta.Decimal.IsZero())
	assert.Equal(t, "Gorra", unmapped[1].Product)
	assert.False(t, unmapped[1].AmountTarjeta.Valid)

	// Report written, input archived.
	require.NotEmpty(t, result.OutputFile)
	wb, err := excelize.OpenFile(result.OutputFile)
	require.NoError(t, err)
	defer wb.Close()
	product, err := wb.GetCellValue(xlsxwriter.MappedSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Renta de Cancha", product)

	assert.Equal(t, filepath.Join(fx.cfg.InputArchiveDir, "ventas.csv"), result.ArchivePath)
	assert.False(t, utils.FileExists(fx.input))

	assert.Contains(t, logs.String(), "unresolved_multiple_unknown_items")
	assert.Contains(t, logs.String(), "Muñequera")
}

func TestRun_XLSXInput(t *testing.T) {
	fx := newFixture(t, "ventas.xlsx", "", false)

	wb := excelize.NewFile()
	rows := [][]any{
		{"fecha", "TOTAL", "Metodo de pago", "Descripcion"},
		{45360, 680, "Efectivo", "Renta de Cancha, Toalla"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, wb.SaveAs(fx.input))
	require.NoError(t, wb.Close())

	result := fx.processor(t).Run(context.Background())
	require.NoError(t, result.Error)

	unmapped := result.Report.Unmapped.Records
	require.Len(t, unmapped, 1)
	assert.Equal(t, "2024-03-09", unmapped[0].Date.String())
	assert.True(t, unmapped[0].AmountEfectivo.Decimal.Equal(decimal.NewFromInt(30)))
	assert.True(t, utils.FileExists(fx.input), "archiving is off")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	fx := newFixture(t, "ventas.csv", ventasCSV, true)

	p := fx.processor(t)
	p.DryRun = true
	result := p.Run(context.Background())

	require.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.Len(t, result.Report.Mapped.Records, 3)
	assert.True(t, utils.FileExists(fx.input))

	entries, err := os.ReadDir(fx.cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		errorType string
	}{
		{
			name:      "missing column",
			file:      "ventas.csv",
			content:   "Fecha,Total,Descripcion\n2024-03-09,650,Renta de Cancha\n",
			errorType: ErrorTypeMissingFields,
		},
		{
			name:      "bad total",
			file:      "ventas.csv",
			content:   "Fecha,Total,Metodo de Pago,Descripcion\n2024-03-09,seiscientos,Tarjeta,Renta de Cancha\n",
			errorType: ErrorTypeRow,
		},
		{
			name:      "unsupported extension",
			file:      "ventas.ods",
			content:   "x",
			errorType: ErrorTypeRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.file, tt.content, true)

			result := fx.processor(t).Run(context.Background())
			assert.False(t, result.Success)
			assert.Error(t, result.Error)
			assert.Equal(t, tt.errorType, result.ErrorType)
			assert.Empty(t, result.OutputFile)
			assert.True(t, utils.FileExists(fx.input), "failed inputs stay in place")
		})
	}
}

func TestResult_ErrorLogEntry(t *testing.T) {
	fx := newFixture(t, "ventas.csv", "Fecha,Total,Metodo de Pago,Descripcion\n2024-03-09,abc,Tarjeta,Snickers\n", false)

	result := fx.processor(t).Run(context.Background())
	entry := result.ErrorLogEntry()

	assert.Equal(t, "ventas.csv", entry.FileName)
	assert.Equal(t, ErrorTypeRow, entry.ErrorType)
	assert.Equal(t, 2, entry.RowNumber)
	assert.Equal(t, "Total", entry.FieldName)
	assert.Equal(t, "abc", entry.FieldValue)
}
