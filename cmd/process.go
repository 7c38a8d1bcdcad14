// =============================================================================
// Sales Reconciler - Process Command
// =============================================================================
//
// This file defines the 'process' command, which reconciles receipt exports
// and writes one report workbook per export.
//
// COMMAND USAGE:
//   reconciler process [flags]
//
// FLAGS:
//   --dry-run : Run the pipeline without writing reports or archiving inputs
//   --file    : Process only this file instead of scanning the input directory
//
// PROCESSING PIPELINE:
//   1. Load configuration and build the catalog
//   2. Discover .xlsx and .csv files in the input directory
//   3. For each file (concurrently, up to max_concurrency):
//      a. Read and validate the export
//      b. Reconcile every receipt against the catalog
//      c. Aggregate and assemble the reports
//      d. Write the report workbook and archive the input
//   4. Write the run summary and error log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bajatenis/sales-reconciler/internal/logger"
	"github.com/bajatenis/sales-reconciler/internal/processor"
	"github.com/bajatenis/sales-reconciler/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the pipeline without writing output files.
var dryRun bool

// filePath is the path to a specific file to process.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile receipt exports and write the sales reports",
	Long: `The process command scans the input directory for .xlsx and .csv receipt
exports and writes a report workbook for each one to the output directory.

Files are processed concurrently. Each file is independent: a file that fails
validation produces no report and stays in the input directory, while the
other files are processed normally.

On successful processing:
  - The report workbook is placed in the output directory
  - The export is moved to the input archive (when archive_inputs is set)

At the end of every run a processing summary is written to the output
directory, plus an error log when any file failed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the pipeline without writing reports or archiving inputs",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific file to process",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the run.
func runProcess(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	mainConfig, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	ctx, log := newLogger(ctx, mainConfig)
	log = log.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	if configPath == "" {
		log.Info().Msg("no configuration file, using built-in defaults")
	} else {
		log.Info().Str("config", configPath).Msg("loaded configuration")
	}

	cat, priority, err := mainConfig.BuildCatalog()
	if err != nil {
		return err
	}

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.ArchiveInputs && !dryRun)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		if !utils.IsSupportedFile(filePath) {
			return fmt.Errorf("unsupported input file: %s (want .xlsx or .csv)", filePath)
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = files.DiscoverInputFiles()
		if err != nil {
			return err
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No .xlsx or .csv files found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// One goroutine per file, at most MaxConcurrency running at once.
	// Results are collected over a buffered channel.

	var wg sync.WaitGroup
	results := make(chan processor.Result, len(inputFiles))
	sem := make(chan struct{}, mainConfig.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(path string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			p := processor.New(path, mainConfig, cat, priority, files)
			p.DryRun = dryRun
			results <- p.Run(ctx)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}
	var errorEntries []utils.ErrorLogEntry

	for result := range results {
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalRows += result.Stats.RowsRead
			summary.TotalTransactions += result.Stats.Transactions
			summary.TotalLineItems += result.Stats.LineItems
			summary.Unresolved += result.Stats.Unresolved
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:     result.FilePath,
				OutputFile:    result.OutputFile,
				ArchivePath:   result.ArchivePath,
				Rows:          result.Stats.RowsRead,
				Transactions:  result.Stats.Transactions,
				LineItems:     result.Stats.LineItems,
				MappedRows:    result.Stats.Products,
				UnmappedItems: result.Stats.UnmappedItems,
				Unresolved:    result.Stats.Unresolved,
				ProcessTime:   result.Stats.ProcessingTime,
			})

			output := result.OutputFile
			if output == "" {
				output = "(dry run)"
			}
			fmt.Printf("  ✓ %s -> %s\n", filepath.Base(result.FilePath), output)
		} else {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
				ErrorType:    result.ErrorType,
			})
			errorEntries = append(errorEntries, result.ErrorLogEntry())
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
		}
	}

	sort.Slice(summary.ProcessedFiles, func(i, j int) bool {
		return summary.ProcessedFiles[i].InputFile < summary.ProcessedFiles[j].InputFile
	})
	sort.Slice(summary.FailedFilesList, func(i, j int) bool {
		return summary.FailedFilesList[i].InputFile < summary.FailedFilesList[j].InputFile
	})
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 5: WRITE LOGS AND PRINT SUMMARY
	// =========================================================================

	if !dryRun {
		if path, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
			log.Warn().Err(err).Msg("failed to write processing summary")
		} else {
			log.Debug().Str("path", path).Msg("wrote processing summary")
		}

		if path, err := utils.WriteErrorLog(errorEntries, mainConfig.OutputDir); err != nil {
			log.Warn().Err(err).Msg("failed to write error log")
		} else if path != "" {
			fmt.Printf("\nErrors have been logged to %s\n", path)
		}
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Unreconciled:    %d\n", summary.Unresolved)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}
