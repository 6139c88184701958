package pdfcpu

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

const (
	pngDataURLPrefix = "data:image/png;base64,"

	commentPoints   = 10
	underlinePoints = 8

	// helveticaUnderscore is the advance width of "_" in Helvetica per point.
	helveticaUnderscore = 0.556

	// signatureScale maps the 600x200 signature canvas to 150x50 points.
	signatureScale  = 0.25
	signatureHeight = 200 * signatureScale

	highlightOpacity = 0.4
)

// Exporter flattens annotations into the page content as pdfcpu stamps.
// Each annotation is one stamp pass over the document.
type Exporter struct {
	tempDir string
}

// NewExporter creates a stamping exporter. Signature images are staged in
// tempDir; empty means os.TempDir().
func NewExporter(tempDir string) *Exporter {
	return &Exporter{tempDir: tempDir}
}

// Export stamps annotations onto a copy of doc.
func (e *Exporter) Export(ctx context.Context, doc []byte, annotations []domain.Annotation) (*domain.ExportResult, error) {
	dims, err := api.PageDims(bytes.NewReader(doc), configuration())
	if err != nil {
		return nil, fmt.Errorf("read page dimensions: %w", err)
	}

	out := make([]byte, len(doc))
	copy(out, doc)
	result := &domain.ExportResult{MIMEType: domain.PDFMIMEType}

	for _, a := range annotations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.Page < 1 || a.Page > len(dims) {
			result.Skipped = append(result.Skipped, skip(a, fmt.Sprintf("page %d outside 1..%d", a.Page, len(dims))))
			continue
		}

		if !finite(a) {
			result.Skipped = append(result.Skipped, skip(a, "position is not finite"))
			continue
		}

		stamped, err := e.stamp(out, a, dims[a.Page-1])
		if err != nil {
			logger.Debug("stamp annotation %d: %v", a.ID, err)
			result.Skipped = append(result.Skipped, skip(a, err.Error()))
			continue
		}
		out = stamped
		result.Applied++
	}

	result.Data = out
	return result, nil
}

func (e *Exporter) stamp(doc []byte, a domain.Annotation, dim types.Dim) ([]byte, error) {
	wm, cleanup, err := e.watermark(a, dim)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var buf bytes.Buffer
	pages := []string{strconv.Itoa(a.Page)}
	if err := api.AddWatermarks(bytes.NewReader(doc), &buf, pages, wm, configuration()); err != nil {
		return nil, fmt.Errorf("add stamp: %w", err)
	}
	return buf.Bytes(), nil
}

// watermark builds the pdfcpu stamp for one annotation.
func (e *Exporter) watermark(a domain.Annotation, dim types.Dim) (*model.Watermark, func(), error) {
	noop := func() {}

	switch a.Type {
	case domain.AnnotationHighlight:
		if a.BoundingRect == nil {
			return nil, noop, fmt.Errorf("highlight without bounding rectangle")
		}
		text := strings.TrimSpace(a.Data)
		if text == "" {
			text = " "
		}
		desc := textDesc(a.Position, a.BoundingRect.Height, dim, a.BoundingRect.Height, "#000000") +
			fmt.Sprintf(", bgcolor:%s, opacity:%.2f", colorOr(a.Color), highlightOpacity)
		wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
		return wm, noop, err

	case domain.AnnotationUnderline:
		if a.BoundingRect == nil {
			return nil, noop, fmt.Errorf("underline without bounding rectangle")
		}
		n := int(math.Max(1, math.Ceil(a.BoundingRect.Width/(helveticaUnderscore*underlinePoints))))
		pos := domain.Point{X: a.Position.X, Y: a.Position.Y + a.BoundingRect.Height - underlinePoints/2}
		desc := textDesc(pos, underlinePoints, dim, underlinePoints, colorOr(a.Color))
		wm, err := pdfcpu.ParseTextWatermarkDetails(strings.Repeat("_", n), desc, true, types.POINTS)
		return wm, noop, err

	case domain.AnnotationComment:
		text := strings.TrimSpace(a.Data)
		if text == "" {
			return nil, noop, fmt.Errorf("comment without text")
		}
		desc := textDesc(a.Position, commentPoints, dim, commentPoints, "#000000") +
			", bgcolor:#FFF9C4, opacity:1"
		wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
		return wm, noop, err

	case domain.AnnotationSignature:
		path, err := e.stageSignature(a)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() { _ = os.Remove(path) }
		off := offset(a.Position, signatureHeight, dim)
		desc := fmt.Sprintf("position:bl, offset:%s, scalefactor:%.2f abs, rotation:0, opacity:1", off, signatureScale)
		wm, err := pdfcpu.ParseImageWatermarkDetails(path, desc, true, types.POINTS)
		if err != nil {
			cleanup()
			return nil, noop, err
		}
		return wm, cleanup, nil

	default:
		return nil, noop, fmt.Errorf("unknown annotation type %q", a.Type)
	}
}

// stageSignature decodes the signature data URL into a temporary PNG file.
func (e *Exporter) stageSignature(a domain.Annotation) (string, error) {
	if !strings.HasPrefix(a.Data, pngDataURLPrefix) {
		return "", fmt.Errorf("signature is not a PNG data URL")
	}
	img, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(a.Data, pngDataURLPrefix))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}

	f, err := os.CreateTemp(e.tempDir, "marginalia-signature-*.png")
	if err != nil {
		return "", fmt.Errorf("stage signature: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(img); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage signature: %w", err)
	}
	return filepath.Clean(f.Name()), nil
}

func textDesc(pos domain.Point, boxHeight float64, dim types.Dim, points float64, fill string) string {
	return fmt.Sprintf("fontname:Helvetica, points:%d, position:bl, offset:%s, scalefactor:1 abs, rotation:0, fillcolor:%s",
		int(math.Max(1, math.Round(points))), offset(pos, boxHeight, dim), fill)
}

// offset converts a top-down page position into a bottom-left offset for
// a box of the given height.
func offset(pos domain.Point, boxHeight float64, dim types.Dim) string {
	x := pos.X
	y := dim.Height - pos.Y - boxHeight
	return fmt.Sprintf("%.2f %.2f", x, y)
}

// finite reports whether every coordinate of a is a real number.
func finite(a domain.Annotation) bool {
	vals := []float64{a.Position.X, a.Position.Y}
	if r := a.BoundingRect; r != nil {
		vals = append(vals, r.X, r.Y, r.Width, r.Height)
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func colorOr(c string) string {
	if c == "" {
		return domain.DefaultColor
	}
	return c
}

func skip(a domain.Annotation, reason string) domain.SkippedAnnotation {
	return domain.SkippedAnnotation{ID: a.ID, Reason: reason}
}
