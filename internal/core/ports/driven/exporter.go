package driven

import (
	"context"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// Exporter produces an annotated copy of a document.
// Implementations must not modify doc or annotations, and skip malformed
// annotations instead of failing the export.
type Exporter interface {
	Export(ctx context.Context, doc []byte, annotations []domain.Annotation) (*domain.ExportResult, error)
}
