// =============================================================================
// Sales Reconciler - Main Entry Point
// =============================================================================
//
// USAGE:
//   reconciler process   - Reconcile every export in the input directory
//   reconciler validate  - Check the configuration and input headers
//   reconciler version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Reconciliation engine, ingestion and export
//   - pkg/utils  : File discovery, archival, naming and run logs
//
// =============================================================================

package main

import (
	"github.com/bajatenis/sales-reconciler/cmd"
)

func main() {
	cmd.Execute()
}
