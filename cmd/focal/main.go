// Focal: smart context selection MCP server
//
// Focal keeps an AI coding session's working context inside a hard
// size budget. It catalogs a project's files, scores them against the
// task at hand, and selects the most relevant subset that fits.
//
// Usage:
//
//	focal serve     # Start MCP server (stdio transport)
//	focal scan      # Scan a project into the catalog
//	focal select    # Select a working set for a task
//	focal report    # Render a context usage report
//	focal update    # Update to the latest version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	focalserver "github.com/MarianaDuarte/focal/internal/server"
	"github.com/MarianaDuarte/focal/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

var rootCmd = &cobra.Command{
	Use:   "focal",
	Short: "Smart context selection MCP server",
	Long: "focal catalogs a project's files, scores them against your current task, " +
		"and selects the most relevant working set under a hard size budget.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := focalserver.New()
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		// Background version check — prints to stderr so it doesn't
		// interfere with MCP's stdio transport on stdout.
		go checkForUpdates()

		return server.ServeStdio(s)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update focal to the latest version",
	Run: func(cmd *cobra.Command, args []string) {
		runUpdate()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("focal v%s\n", focalserver.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// checkForUpdates runs a best-effort version check and prints a notice
// to stderr if an update is available. Network failures are silent.
func checkForUpdates() {
	result := updater.CheckVersion(focalserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: focal update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest release.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	result := updater.CheckVersion(focalserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Downloading...\n")

	if err := updater.SelfUpdate(focalserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nYou can download manually from:\n%s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart focal to use the new version.\n", result.LatestVersion)
}
