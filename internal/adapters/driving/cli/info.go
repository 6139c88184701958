package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show document details",
	Long: `Load a PDF and print its metadata, page count and page sizes.

The same checks as the annotator apply: the file must be a PDF of at most
the configured upload size.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}
	if err := loadFile(cmd, args[0]); err != nil {
		return err
	}

	doc := workspaceService.Document()
	meta := doc.Metadata

	cmd.Printf("File:     %s\n", doc.Name)
	cmd.Printf("Size:     %s\n", humanize.Bytes(uint64(doc.Size())))
	cmd.Printf("Pages:    %s\n", humanize.Comma(int64(doc.NumPages)))
	printField(cmd, "Title", meta.Title)
	printField(cmd, "Author", meta.Author)
	printField(cmd, "Subject", meta.Subject)
	printField(cmd, "Created", meta.CreationDate)
	printField(cmd, "Keywords", strings.Join(meta.Keywords, ", "))

	cmd.Println()
	cmd.Println("Page sizes (points):")
	for page := 1; page <= doc.NumPages; page++ {
		size, err := workspaceService.PageSize(page)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		cmd.Printf("  %3d  %.0f x %.0f\n", page, size.Width, size.Height)
	}
	return nil
}

// loadFile reads path and loads it into the workspace.
func loadFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := workspaceService.Load(cmd.Context(), driving.DocumentSource{
		Name: filepath.Base(path),
		Path: path,
		Data: data,
	}); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func printField(cmd *cobra.Command, label, value string) {
	if value == "" {
		return
	}
	cmd.Printf("%-9s %s\n", label+":", value)
}
