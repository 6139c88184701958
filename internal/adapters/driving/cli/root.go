// Package cli provides the marginalia command line: the interactive
// annotator, document inspection, batch export, settings and the MCP server.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "marginalia",
	Short: "Annotate PDF documents in the terminal",
	Long: `marginalia loads one PDF, lets you highlight and underline its text,
place comments and signatures, and exports an annotated copy.

Run "marginalia annotate <file>" to open the interactive annotator.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services injected by main.
var (
	workspaceService driving.WorkspaceService
	settingsService  driving.SettingsService
	mcpRatePerSecond float64
	logPath          string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetWorkspaceService sets the annotation workspace.
func SetWorkspaceService(ws driving.WorkspaceService) {
	workspaceService = ws
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetMCPRateLimit bounds MCP tool calls per second. Zero disables throttling.
func SetMCPRateLimit(perSecond float64) {
	mcpRatePerSecond = perSecond
}

// SetLogPath sets the file verbose logs are written to while the
// interactive annotator owns the terminal.
func SetLogPath(path string) {
	logPath = path
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
