// =============================================================================
// Sales Reconciler - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration: where
// the receipt exports are read from and the reports written to, how the input
// columns are named, and the product catalog with its display priority.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (the club's current catalog and column names)
//   2. The YAML file given with --config (default: config.yaml)
//   3. RECONCILER_* environment variables (a .env file is honored)
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bajatenis/sales-reconciler/internal/catalog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECONCILER_"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .xlsx and .csv receipt exports.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one report workbook per input file and the run summary.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful run when
	// ArchiveInputs is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveInputs moves processed inputs to InputArchiveDir.
	// Default: false
	ArchiveInputs bool `yaml:"archive_inputs"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat names the report workbook.
	// Placeholders:
	//   {name}      - input file name without extension
	//   {timestamp} - run time (YYYYMMDD_HHMMSS)
	//   {uuid}      - a random UUID
	// Default: "{name}_reporte_{timestamp}.xlsx"
	OutputFormat string `yaml:"output_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of input files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// Workers is the number of goroutines reconciling transactions of one file.
	// Default: 4
	Workers int `yaml:"workers"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// SheetName selects the worksheet of .xlsx inputs. Empty means the first.
	SheetName string `yaml:"sheet_name"`

	// CSVDelimiter separates fields of .csv inputs.
	// Common values: "," (comma), ";" (semicolon), "tab"
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// Columns names the required input columns.
	Columns Columns `yaml:"columns"`

	// DateFormats are tried in order when a date cell is text.
	// Layouts use Go reference time notation.
	DateFormats []string `yaml:"date_formats"`

	// PaymentAliases maps raw payment method values (case-insensitive) to the
	// canonical "Tarjeta" or "Efectivo".
	PaymentAliases map[string]string `yaml:"payment_aliases"`

	// =========================================================================
	// CATALOG SETTINGS
	// =========================================================================

	// Catalog maps product names to their fixed unit price.
	Catalog map[string]decimal.Decimal `yaml:"catalog"`

	// Priority is the display order of products in the sales summary.
	Priority []string `yaml:"priority"`
}

// Columns holds the header names of the required input fields.
type Columns struct {
	Date          string `yaml:"date"`
	Total         string `yaml:"total"`
	PaymentMethod string `yaml:"payment_method"`
	Description   string `yaml:"description"`
}

// Required returns the header names in a fixed order.
func (c Columns) Required() []string {
	return []string{c.Date, c.Total, c.PaymentMethod, c.Description}
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultCatalog returns the club's product list.
func DefaultCatalog() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"Renta de Cancha":       decimal.NewFromInt(650),
		"Renta de Cancha Noche": decimal.NewFromInt(750),
		"Clase Individual":      decimal.NewFromInt(500),
		"Clase Grupal":          decimal.NewFromInt(250),
		"Renta de Raqueta":      decimal.NewFromInt(100),
		"Bote de Pelotas":       decimal.NewFromInt(180),
		"Agua 1 lt":             decimal.NewFromInt(30),
		"Agua 600 ml":           decimal.NewFromInt(20),
		"Gatorade":              decimal.NewFromInt(40),
		"Powerade":              decimal.NewFromInt(40),
		"Coca Cola":             decimal.NewFromInt(30),
		"Snickers":              decimal.NewFromInt(30),
		"Barra de Proteina":     decimal.NewFromInt(45),
	}
}

// DefaultPriority returns the summary display order for DefaultCatalog.
func DefaultPriority() []string {
	return []string{
		"Renta de Cancha",
		"Renta de Cancha Noche",
		"Clase Individual",
		"Clase Grupal",
		"Renta de Raqueta",
		"Bote de Pelotas",
		"Agua 1 lt",
		"Agua 600 ml",
		"Gatorade",
		"Powerade",
		"Coca Cola",
		"Snickers",
		"Barra de Proteina",
	}
}

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults and environment
//     overrides applied.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a MainConfig from YAML bytes.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := applyEnvOverrides(&config); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "{name}_reporte_{timestamp}.xlsx"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Workers == 0 {
		config.Workers = 4
	}

	if config.CSVDelimiter == "" {
		config.CSVDelimiter = ","
	}

	if config.Columns.Date == "" {
		config.Columns.Date = "Fecha"
	}
	if config.Columns.Total == "" {
		config.Columns.Total = "Total"
	}
	if config.Columns.PaymentMethod == "" {
		config.Columns.PaymentMethod = "Metodo de Pago"
	}
	if config.Columns.Description == "" {
		config.Columns.Description = "Descripcion"
	}

	if len(config.DateFormats) == 0 {
		config.DateFormats = []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			"02/01/2006",
			"02/01/2006 15:04",
			"01-02-06",
		}
	}

	if config.PaymentAliases == nil {
		config.PaymentAliases = map[string]string{
			"credito":          "Tarjeta",
			"debito":           "Tarjeta",
			"contactless":      "Tarjeta",
			"chip":             "Tarjeta",
			"card":             "Tarjeta",
			"pago con tarjeta": "Tarjeta",
			"cash":             "Efectivo",
		}
	}

	// A catalog given in the file replaces the default one entirely.
	if len(config.Catalog) == 0 {
		config.Catalog = DefaultCatalog()
		if len(config.Priority) == 0 {
			config.Priority = DefaultPriority()
		}
	}
}

// applyEnvOverrides applies RECONCILER_* environment variables.
func applyEnvOverrides(config *MainConfig) error {
	if v, ok := lookupEnv("INPUT_DIR"); ok {
		config.InputDir = v
	}
	if v, ok := lookupEnv("OUTPUT_DIR"); ok {
		config.OutputDir = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := lookupEnv("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		config.Workers = n
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Validate checks the configuration without touching the filesystem.
func Validate(config *MainConfig) error {
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	}
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	seen := make(map[string]bool)
	for _, name := range config.Columns.Required() {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("column names must not be empty")
		}
		if seen[key] {
			return fmt.Errorf("column %q configured twice", name)
		}
		seen[key] = true
	}

	for alias, canonical := range config.PaymentAliases {
		if canonical != "Tarjeta" && canonical != "Efectivo" {
			return fmt.Errorf("payment alias %q maps to %q, want Tarjeta or Efectivo", alias, canonical)
		}
	}

	if _, _, err := config.BuildCatalog(); err != nil {
		return err
	}

	return nil
}

// BuildCatalog returns the immutable catalog and priority order.
func (c *MainConfig) BuildCatalog() (*catalog.Catalog, *catalog.Priority, error) {
	cat, err := catalog.New(c.Catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid catalog: %w", err)
	}

	priority, err := catalog.NewPriority(c.Priority)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid priority: %w", err)
	}

	return cat, priority, nil
}

// EnsureDirectories creates the output directory and, when archiving, the
// input archive directory.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{c.OutputDir}
	if c.ArchiveInputs {
		dirs = append(dirs, c.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
