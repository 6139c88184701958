package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Apply annotations from a file and export the annotated copy",
	Long: `Load a PDF, apply a JSON list of annotations and write the annotated copy.

Each entry names a type (highlight, underline, comment or signature), a page
and a position in points from the top-left corner of the page:

  [
    {"type": "highlight", "page": 1, "position": {"x": 72, "y": 60},
     "boundingRect": {"x": 72, "y": 60, "width": 120, "height": 12},
     "data": "Total due", "color": "#4CAF50"},
    {"type": "comment", "page": 2, "position": {"x": 300, "y": 100},
     "data": "Check figures", "bold": true},
    {"type": "signature", "page": 3, "position": {"x": 350, "y": 650},
     "name": "Ada Lovelace", "font": "handwritten"}
  ]

Without --out the copy is written next to the source as <name>-annotated.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("annotations", "a", "", "JSON file with the annotations to apply")
	exportCmd.Flags().StringP("out", "o", "", "output file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	annotationsPath, err := cmd.Flags().GetString("annotations")
	if err != nil {
		return fmt.Errorf("getting annotations flag: %w", err)
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("getting out flag: %w", err)
	}

	var requests []domain.AnnotationRequest
	if annotationsPath != "" {
		requests, err = readRequests(annotationsPath)
		if err != nil {
			return err
		}
	}

	if err := loadFile(cmd, args[0]); err != nil {
		return err
	}

	ctx := cmd.Context()
	for i, req := range requests {
		if _, _, err := workspaceService.Apply(ctx, req); err != nil {
			return fmt.Errorf("annotation %d (%s): %w", i+1, req.Type, err)
		}
	}

	if out == "" {
		out = domain.ExportPath(workspaceService.Document(), "")
	}

	result, _, err := workspaceService.Export(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("exported %s (%d applied, %d skipped)", out, result.Applied, len(result.Skipped))

	cmd.Printf("Exported %d annotation(s) to %s (%s)\n", result.Applied, out, humanize.Bytes(uint64(len(result.Data))))
	for _, s := range result.Skipped {
		cmd.PrintErrf("Skipped annotation %d: %s\n", s.ID, s.Reason)
	}
	return nil
}

func readRequests(path string) ([]domain.AnnotationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var requests []domain.AnnotationRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, path, err)
	}
	return requests, nil
}
