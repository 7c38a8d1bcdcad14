// =============================================================================
// Sales Reconciler - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// (and optionally the headers of input files) without writing anything.
//
// COMMAND USAGE:
//   reconciler validate [file ...]
//
// OUTPUT:
//   - The resolved directories and column names
//   - The catalog in display order, with prices
//   - For each file given: whether every required column is present
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bajatenis/sales-reconciler/internal/csvparser"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/bajatenis/sales-reconciler/internal/validation"
	"github.com/bajatenis/sales-reconciler/internal/xlsxparser"
	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [file ...]",
	Short: "Check the configuration, catalog and input headers",
	Long: `The validate command loads the configuration, builds the catalog and
prints what a run would use. Any files given as arguments are read and their
header row is checked for the required columns.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

// init registers the validate command with the root command.
func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate prints the effective configuration and checks input headers.
func runValidate(args []string) error {
	mainConfig, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	cat, priority, err := mainConfig.BuildCatalog()
	if err != nil {
		return err
	}

	if configPath == "" {
		configPath = "(built-in defaults)"
	}

	fmt.Println("=== Configuration ===")
	fmt.Printf("Config file:     %s\n", configPath)
	fmt.Printf("Input dir:       %s\n", mainConfig.InputDir)
	fmt.Printf("Output dir:      %s\n", mainConfig.OutputDir)
	fmt.Printf("Archive inputs:  %t\n", mainConfig.ArchiveInputs)
	fmt.Printf("Workers:         %d\n", mainConfig.Workers)
	fmt.Printf("Columns:         %s\n", strings.Join(mainConfig.Columns.Required(), ", "))

	names := cat.Names()
	priority.Sort(names)

	fmt.Printf("\n=== Catalog (%d products, display order) ===\n", cat.Len())
	for i, name := range names {
		price, _ := cat.Lookup(name)
		marker := ""
		if !priority.Contains(name) {
			marker = "  (not in priority list)"
		}
		fmt.Printf("  %2d. %-30s %10s%s\n", i+1, name, price.StringFixed(2), marker)
	}

	if len(args) == 0 {
		return nil
	}

	fmt.Println("\n=== Input files ===")
	failed := 0
	for _, path := range args {
		sheet, err := readHeaders(path, mainConfig.CSVDelimiter, mainConfig.SheetName)
		if err == nil {
			err = validation.CheckRequiredFields(sheet.Headers, mainConfig.Columns)
		}
		if err != nil {
			failed++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(path), err)
			continue
		}
		fmt.Printf("  ✓ %s (%d rows)\n", filepath.Base(path), len(sheet.Rows))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}

// readHeaders reads an input file by extension.
func readHeaders(path, delimiter, sheetName string) (*types.RawSheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvparser.Parse(path, delimiter)
	case ".xlsx":
		return xlsxparser.Parse(path, sheetName)
	default:
		return nil, fmt.Errorf("unsupported input file type: %s", filepath.Ext(path))
	}
}
