package driven

import "github.com/custodia-labs/marginalia/internal/core/domain"

// RenderedDocument is a parsed document ready for display.
type RenderedDocument interface {
	// NumPages returns the page count.
	NumPages() int

	// PageSize returns the extent of a 1-based page.
	PageSize(page int) (domain.PageSize, error)

	// TextLayer returns the text runs of a 1-based page in reading order.
	TextLayer(page int) ([]domain.TextRun, error)
}

// Renderer parses document bytes for display.
type Renderer interface {
	// Open parses data. The error text is shown to the user on failure.
	Open(data []byte) (RenderedDocument, error)
}

// MetadataExtractor reads descriptive metadata from a document.
// Extraction is best-effort: on any failure implementations return
// domain.FallbackMetadata(fileName) and no error.
type MetadataExtractor interface {
	Extract(data []byte, fileName string) domain.DocumentMetadata
}
