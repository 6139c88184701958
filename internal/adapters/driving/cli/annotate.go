package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// ErrNotTerminal is returned when annotate runs without an interactive terminal.
var ErrNotTerminal = errors.New("annotate needs an interactive terminal; use \"marginalia export\" for scripted runs")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runApp runs the terminal UI. Replaced in tests.
var runApp = func(app *tui.App) error {
	return app.Run()
}

var annotateCmd = &cobra.Command{
	Use:   "annotate [file]",
	Short: "Open the interactive annotator",
	Long: `Open the interactive terminal annotator, optionally loading a PDF.

Controls:
  1-4 / h u c s  - Highlight, underline, comment, signature
  ←↑→↓           - Move the cursor on the page
  Enter / Space  - Mark text, or place a comment or signature
  n / p          - Next / previous page
  + / -          - Zoom in / out
  Tab            - Cycle highlight colour
  l              - Focus the layers panel
  z              - Undo the last annotation on the page
  e              - Export the annotated copy
  o              - Open another document
  ?              - Toggle help
  q              - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("out-dir", "", "directory for exported copies (default: next to the source)")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("annotator crashed: %v", r)
		}
	}()

	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}
	if !isTerminal() {
		return ErrNotTerminal
	}

	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return fmt.Errorf("getting out-dir flag: %w", err)
	}

	// The UI owns the screen; keep verbose logs out of it.
	if logger.IsVerbose() && logPath != "" {
		restore, err := logger.ToFile(logPath)
		if err != nil {
			return err
		}
		defer restore() //nolint:errcheck
	}

	app, err := tui.NewApp(tui.NewPorts(workspaceService, settingsService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithExportDir(outDir)
	if len(args) == 1 {
		app.WithInitialPath(args[0])
	}

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
