// =============================================================================
// Sales Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler)
//   ├── processCmd  (reconciler process)
//   ├── validateCmd (reconciler validate)
//   └── versionCmd  (reconciler version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading a .env file into the environment
//   3. Resolving and loading the configuration file
//   4. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bajatenis/sales-reconciler/internal/config"
	"github.com/bajatenis/sales-reconciler/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is used when neither --config nor RECONCILER_CONFIG is set.
const defaultConfigFile = "config.yaml"

// configEnvVar names the environment variable holding the config file path.
const configEnvVar = "RECONCILER_CONFIG"

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Sales Reconciler - Turn POS receipt exports into product sales reports",
	Long: `Sales Reconciler reads point-of-sale receipt exports (.xlsx or .csv, one
row per receipt) and produces, for each export, a workbook with two reports:

  Productos    Sales per catalog product, split by card and cash, in the
               configured display order, with totals.
  No Mapeados  Every item that is not in the catalog, priced from the receipt
               total when it is the only unknown item on its receipt.

Example Usage:
  reconciler process                     # Process every export in the input directory
  reconciler process --file ventas.xlsx  # Process a single export
  reconciler process --config ./my.yaml  # Use a custom configuration file
  reconciler validate                    # Check the configuration and catalog`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(".env")
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the main configuration file (default is $"+configEnvVar+" or "+defaultConfigFile+")",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadDotEnv loads KEY=VALUE pairs from path into the environment. A missing
// file is not an error; variables already set are left alone.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath returns the configuration file to load and whether the
// user asked for it explicitly.
func resolveConfigPath() (string, bool) {
	if cfgFile != "" {
		return cfgFile, true
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path, true
	}
	return defaultConfigFile, false
}

// loadConfig loads the main configuration. When no file was named and
// config.yaml does not exist, the built-in defaults are used.
func loadConfig() (*config.MainConfig, string, error) {
	path, explicit := resolveConfigPath()

	mainConfig, err := config.LoadMainConfig(path)
	if err == nil {
		return mainConfig, path, nil
	}

	if !explicit && errors.Is(err, fs.ErrNotExist) {
		mainConfig, err = config.Parse(nil)
		if err != nil {
			return nil, "", err
		}
		return mainConfig, "", nil
	}

	return nil, "", fmt.Errorf("failed to load main config: %w", err)
}

// newLogger builds the console logger for a command and stores it in ctx.
func newLogger(ctx context.Context, mainConfig *config.MainConfig) (context.Context, zerolog.Logger) {
	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(level)
	return logger.WithContext(ctx, log), log
}
