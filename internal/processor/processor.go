// =============================================================================
// Sales Reconciler - Processor Module
// =============================================================================
//
// This module runs the reconciliation pipeline for a single input file, from
// reading the receipt export to writing the report workbook.
//
// PIPELINE:
//   1. Read the export (.xlsx or .csv) into a raw sheet
//   2. Validate columns and convert rows into transactions
//   3. Tokenize, match and reconcile every transaction (worker pool)
//   4. Aggregate line items into the product summary and unmapped listing
//   5. Assemble the two report tables
//   6. Write the report workbook
//   7. Archive the input file
//
// FAILURE POLICY:
//   Any failure in steps 1-6 fails the whole file and nothing is written.
//   Archival failures are logged and do not fail the file.
//
// CONCURRENCY:
//   A Processor handles one file. The process command runs one Processor per
//   file in its own goroutine.
//
// =============================================================================

package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bajatenis/sales-reconciler/internal/aggregator"
	"github.com/bajatenis/sales-reconciler/internal/catalog"
	"github.com/bajatenis/sales-reconciler/internal/config"
	"github.com/bajatenis/sales-reconciler/internal/csvparser"
	"github.com/bajatenis/sales-reconciler/internal/logger"
	"github.com/bajatenis/sales-reconciler/internal/reconciler"
	"github.com/bajatenis/sales-reconciler/internal/report"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/bajatenis/sales-reconciler/internal/validation"
	"github.com/bajatenis/sales-reconciler/internal/xlsxparser"
	"github.com/bajatenis/sales-reconciler/internal/xlsxwriter"
	"github.com/bajatenis/sales-reconciler/pkg/utils"
	"github.com/rs/zerolog"
)

// Error types reported in Result.ErrorType and the error log.
const (
	ErrorTypeRead          = "read_error"
	ErrorTypeMissingFields = "missing_fields"
	ErrorTypeRow           = "row_error"
	ErrorTypeReconcile     = "reconcile_error"
	ErrorTypeWrite         = "write_error"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated workbook.
	// This is empty if processing failed or on a dry run.
	OutputFile string

	// ArchivePath is where the input was moved to, if it was archived.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// ErrorType classifies Error (one of the ErrorType constants).
	ErrorType string

	// Report is the assembled report. It is set on success, dry runs included.
	Report report.Report

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of data rows in the input.
	RowsRead int

	// Transactions is the number of transactions reconciled.
	Transactions int

	// LineItems is the number of items parsed out of all descriptions.
	LineItems int

	// Resolved counts transactions whose lone unknown item was priced.
	Resolved int

	// Unresolved counts transactions left with unpriced items.
	Unresolved int

	// Products is the number of rows in the product summary.
	Products int

	// UnmappedItems is the number of rows in the unmapped listing.
	UnmappedItems int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// ErrorLogEntry converts a failed result into an error log entry.
func (r Result) ErrorLogEntry() utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp: time.Now(),
		FileName:  filepath.Base(r.FilePath),
		ErrorType: r.ErrorType,
	}
	if r.Error != nil {
		entry.ErrorMessage = r.Error.Error()
	}

	var rowErr *validation.RowError
	if errors.As(r.Error, &rowErr) {
		entry.RowNumber = rowErr.Row
		entry.FieldName = rowErr.Field
		entry.FieldValue = rowErr.Value
	}

	return entry
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor handles the reconciliation of a single input file.
type Processor struct {
	// path is the input file.
	path string

	// cfg is the main application configuration.
	cfg *config.MainConfig

	// catalog and priority are shared read-only by every Processor of a run.
	catalog  *catalog.Catalog
	priority *catalog.Priority

	// files handles output naming and archival.
	files *utils.FileManager

	// DryRun runs the pipeline without writing or archiving anything.
	DryRun bool
}

// New creates a new Processor instance.
//
// PARAMETERS:
//   - path: The input file (.xlsx or .csv).
//   - cfg: The main application configuration.
//   - cat: The product catalog.
//   - priority: The product display order.
//   - files: The file manager for output and archive directories.
func New(path string, cfg *config.MainConfig, cat *catalog.Catalog, priority *catalog.Priority, files *utils.FileManager) *Processor {
	return &Processor{
		path:     path,
		cfg:      cfg,
		catalog:  cat,
		priority: priority,
		files:    files,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file. The logger is taken from ctx.
func (p *Processor) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: p.path}

	log := logger.FromContext(ctx).With().Str("file", filepath.Base(p.path)).Logger()
	log.Info().Msg("processing file")

	fail := func(errorType string, err error) Result {
		result.Error = err
		result.ErrorType = errorType
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Error().Err(err).Str("error_type", errorType).Msg("file failed")
		return result
	}

	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	sheet, err := p.readSheet()
	if err != nil {
		return fail(ErrorTypeRead, err)
	}

	result.Stats.RowsRead = len(sheet.Rows)
	log.Debug().Int("rows", len(sheet.Rows)).Strs("headers", sheet.Headers).Msg("read input")

	// =========================================================================
	// STEP 2: VALIDATE AND CONVERT ROWS
	// =========================================================================
	// Missing columns are reported before any row is looked at. The first bad
	// row fails the whole file.

	transactions, err := validation.ParseTransactions(sheet, p.cfg)
	if err != nil {
		var missing *validation.MissingFieldsError
		if errors.As(err, &missing) {
			return fail(ErrorTypeMissingFields, err)
		}
		return fail(ErrorTypeRow, err)
	}

	result.Stats.Transactions = len(transactions)
	warnUnknownPayments(log, transactions)

	// =========================================================================
	// STEP 3: RECONCILE
	// =========================================================================

	reconciled, err := reconciler.ReconcileAll(ctx, transactions, p.catalog, p.cfg.Workers)
	if err != nil {
		return fail(ErrorTypeReconcile, err)
	}

	for _, rt := range reconciled {
		switch {
		case rt.Status == reconciler.Resolved:
			result.Stats.Resolved++
		case rt.Status.Unresolved():
			result.Stats.Unresolved++
			log.Warn().
				Int("row", rt.Transaction.Row).
				Str("status", rt.Status.String()).
				Str("total", rt.Transaction.Total.String()).
				Str("mapped_subtotal", rt.MappedSubtotal.String()).
				Strs("unpriced", rt.UnpricedNames()).
				Msg("transaction does not reconcile to its total")
		}
	}

	// =========================================================================
	// STEP 4 & 5: AGGREGATE AND ASSEMBLE
	// =========================================================================

	items := reconciler.Flatten(reconciled)
	result.Stats.LineItems = len(items)

	summary := aggregator.Aggregate(items, p.catalog, p.priority)
	for _, row := range summary.Products {
		if !row.AmountOther.IsZero() {
			log.Warn().
				Str("product", row.Product).
				Str("amount", row.AmountOther.String()).
				Msg("sales with another payment method are not in the report columns")
		}
	}

	result.Report = report.Assemble(summary)
	result.Stats.Products = len(summary.Products)
	result.Stats.UnmappedItems = len(summary.Unmapped)

	log.Debug().
		Int("transactions", result.Stats.Transactions).
		Int("line_items", result.Stats.LineItems).
		Int("resolved", result.Stats.Resolved).
		Int("unresolved", result.Stats.Unresolved).
		Msg("reconciled")

	if p.DryRun {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Info().Msg("dry run, no report written")
		return result
	}

	// =========================================================================
	// STEP 6: WRITE REPORT
	// =========================================================================

	outputPath := filepath.Join(p.files.OutputDir, utils.GenerateOutputFileName(p.cfg.OutputFormat, p.path))
	if err := xlsxwriter.Write(outputPath, result.Report); err != nil {
		return fail(ErrorTypeWrite, err)
	}
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 7: ARCHIVE INPUT
	// =========================================================================

	archivePath, err := p.files.ArchiveInputFile(p.path)
	if err != nil {
		log.Warn().Err(err).Msg("failed to archive input")
	} else if archivePath != p.path {
		result.ArchivePath = archivePath
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	log.Info().
		Str("output", outputPath).
		Dur("elapsed", result.Stats.ProcessingTime).
		Msg("wrote report")

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readSheet dispatches on the file extension.
func (p *Processor) readSheet() (*types.RawSheet, error) {
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".csv":
		return csvparser.Parse(p.path, p.cfg.CSVDelimiter)
	case ".xlsx":
		return xlsxparser.Parse(p.path, p.cfg.SheetName)
	default:
		return nil, fmt.Errorf("unsupported input file type: %s", filepath.Ext(p.path))
	}
}

// warnUnknownPayments logs each payment method that is neither card nor
// cash once, with the number of transactions using it.
func warnUnknownPayments(log zerolog.Logger, txs []types.Transaction) {
	counts := make(map[types.PaymentMethod]int)
	for _, tx := range txs {
		if tx.PaymentMethod != types.PaymentCard && tx.PaymentMethod != types.PaymentCash {
			counts[tx.PaymentMethod]++
		}
	}

	methods := make([]string, 0, len(counts))
	for method := range counts {
		methods = append(methods, string(method))
	}
	sort.Strings(methods)

	for _, method := range methods {
		log.Warn().
			Str("payment_method", method).
			Int("transactions", counts[types.PaymentMethod(method)]).
			Msg("unrecognized payment method")
	}
}
