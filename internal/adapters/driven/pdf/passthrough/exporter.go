// Package passthrough provides an exporter that returns the original
// document bytes unchanged. Annotations are counted but not applied.
package passthrough

import (
	"context"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

// Exporter returns a copy of the input document.
type Exporter struct{}

// NewExporter creates a passthrough exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export returns a copy of doc. Malformed annotations are still reported.
func (e *Exporter) Export(ctx context.Context, doc []byte, annotations []domain.Annotation) (*domain.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]byte, len(doc))
	copy(out, doc)

	result := &domain.ExportResult{Data: out, MIMEType: domain.PDFMIMEType}
	for i := range annotations {
		if err := annotations[i].Validate(0); err != nil {
			result.Skipped = append(result.Skipped, domain.SkippedAnnotation{ID: annotations[i].ID, Reason: err.Error()})
		}
	}
	return result, nil
}
