// =============================================================================
// Sales Reconciler - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   reconciler version [--short]
//
// OUTPUT:
//   Sales Reconciler
//   Version:    1.2.0
//   Commit:     4f2c1e9
//   Go Version: go1.24.11
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is the application version.
// Set at build time:
//   go build -ldflags "-X 'github.com/bajatenis/sales-reconciler/cmd.Version=1.2.0'"
var Version = "dev"

// shortVersion prints only the version number.
var shortVersion bool

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		if shortVersion {
			fmt.Println(Version)
			return
		}
		fmt.Println("Sales Reconciler")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Commit:     %s\n", vcsRevision())
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&shortVersion, "short", false, "Print only the version number")
}

// vcsRevision returns the abbreviated commit embedded by the Go toolchain.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}
	return "unknown"
}
