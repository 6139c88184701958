package driven

import (
	"context"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// AnnotationStore holds the annotations of the current session.
// Records keep insertion order; that order decides "most recent".
type AnnotationStore interface {
	// NextID reserves a fresh identifier, strictly greater than any issued before.
	NextID(ctx context.Context) (int64, error)

	// Append stores a complete annotation.
	Append(ctx context.Context, a domain.Annotation) error

	// Delete removes the annotation with the given ID.
	// Returns false without error if no such annotation exists.
	Delete(ctx context.Context, id int64) (bool, error)

	// UndoLast removes the most recently inserted annotation on page.
	// Returns nil without error if the page has none.
	UndoLast(ctx context.Context, page int) (*domain.Annotation, error)

	// ByPage returns the annotations of one page in insertion order.
	ByPage(ctx context.Context, page int) ([]domain.Annotation, error)

	// All returns every annotation in insertion order.
	All(ctx context.Context) ([]domain.Annotation, error)

	// Clear removes every annotation. Issued IDs are not reused.
	Clear(ctx context.Context) error

	// Count returns the number of stored annotations.
	Count(ctx context.Context) (int, error)
}
