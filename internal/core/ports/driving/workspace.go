package driving

import (
	"context"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// DocumentSource is a document offered for loading.
type DocumentSource struct {
	// Name is the file name shown to the user.
	Name string

	// Path is the file path; empty for in-memory sources.
	Path string

	// Data is the raw file content.
	Data []byte
}

// WorkspaceService is the single annotation session: one document, its
// annotations and the tool state. All mutations are serialised.
type WorkspaceService interface {
	// Load validates and parses src and replaces the current document.
	// Annotations are cleared and the page resets to 1; tool, colour, zoom
	// and fullscreen are kept. On error the previous session is untouched.
	Load(ctx context.Context, src DocumentSource) (domain.Event, error)

	// Reload re-reads the current document from its path.
	Reload(ctx context.Context) (domain.Event, error)

	// Document returns the loaded document, or nil.
	Document() *domain.Document

	// Session returns a copy of the interaction state.
	Session() domain.Session

	// PageSize returns the extent of a page of the loaded document.
	PageSize(page int) (domain.PageSize, error)

	// TextLayer returns the text runs of a page of the loaded document.
	TextLayer(page int) ([]domain.TextRun, error)

	// Tool and view state.
	SetTool(tool domain.AnnotationType) (domain.Event, error)
	SetPage(page int) int
	NextPage() int
	PrevPage() int
	ZoomIn() float64
	ZoomOut() float64
	SetZoom(z float64) float64
	ToggleFullscreen() bool
	Escape() bool
	SetColor(color string) error
	CycleColor() string

	// Add completes draft with the current tool, colour and page and stores it.
	Add(ctx context.Context, draft domain.Draft) (*domain.Annotation, domain.Event, error)

	// Apply stores a complete annotation request without changing the tool
	// or page.
	Apply(ctx context.Context, req domain.AnnotationRequest) (*domain.Annotation, domain.Event, error)

	// Delete removes an annotation. Missing IDs are a no-op.
	Delete(ctx context.Context, id int64) (domain.Event, error)

	// UndoLast removes the most recent annotation on the current page.
	UndoLast(ctx context.Context) (domain.Event, error)

	// Annotations returns the annotations of a page in insertion order.
	Annotations(ctx context.Context, page int) ([]domain.Annotation, error)

	// AllAnnotations returns every annotation in insertion order.
	AllAnnotations(ctx context.Context) ([]domain.Annotation, error)

	// Click handles a point interaction in the viewport frame. For comment and
	// signature tools it opens the matching capture; otherwise it does nothing.
	Click(click, origin domain.Point) (*domain.Capture, error)

	// Select handles a range interaction for the highlight and underline tools.
	// The selection is consumed on success. Empty selections are a no-op.
	Select(ctx context.Context, sel *domain.Selection, origin domain.Point) (*domain.Annotation, domain.Event, error)

	// Capture returns the open capture, or nil.
	Capture() *domain.Capture

	// ConfirmComment closes the comment capture and stores the comment.
	ConfirmComment(ctx context.Context, text string, format domain.CommentFormat) (*domain.Annotation, domain.Event, error)

	// ConfirmSignature closes the signature capture and stores the signature.
	// Empty input is rejected and the capture stays open.
	ConfirmSignature(ctx context.Context, in domain.SignatureInput) (*domain.Annotation, domain.Event, error)

	// CancelCapture discards the open capture without storing anything.
	CancelCapture()

	// Export produces the annotated copy of the loaded document.
	Export(ctx context.Context) (*domain.ExportResult, domain.Event, error)

	// Exporting reports whether an export is running.
	Exporting() bool

	// Reloads delivers an event each time the document is reloaded after a
	// change on disk.
	Reloads() <-chan domain.Event

	// Close releases the document and its watcher.
	Close() error
}
