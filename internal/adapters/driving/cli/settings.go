package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the defaults marginalia starts with.

Settings are stored in ~/.marginalia/config.toml. The annotator also saves
the tool, colour and zoom in use when it quits.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting.

Available keys:
  annotate.tool        - highlight, underline, comment or signature
  annotate.color       - highlight and underline colour as #RRGGBB
  view.zoom            - initial zoom between 0.5 and 2.0
  upload.max_bytes     - largest accepted document in bytes
  store.backend        - memory or sqlite
  export.mode          - stamp or passthrough
  watch.enabled        - reload the document when it changes on disk
  mcp.rate_per_second  - MCP tool calls per second, 0 for no limit`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Annotate]")
	cmd.Printf("  Tool: %s\n", settings.Annotate.Tool)
	cmd.Printf("  Colour: %s (%s)\n", settings.Annotate.Color, domain.ColorLabel(settings.Annotate.Color))
	cmd.Println()

	cmd.Println("[View]")
	cmd.Printf("  Zoom: %.0f%%\n", settings.View.Zoom*100)
	cmd.Println()

	cmd.Println("[Documents]")
	cmd.Printf("  Max upload: %d bytes\n", settings.Upload.MaxBytes)
	cmd.Printf("  Store: %s\n", settings.Store.Description())
	cmd.Printf("  Export: %s\n", settings.Export.Description())
	cmd.Printf("  Watch for changes: %s\n", yesNo(settings.WatchEnabled))
	cmd.Println()

	cmd.Println("[MCP]")
	if settings.MCP.RatePerSecond > 0 {
		cmd.Printf("  Rate limit: %s calls/s\n", strconv.FormatFloat(settings.MCP.RatePerSecond, 'f', -1, 64))
	} else {
		cmd.Println("  Rate limit: none")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
