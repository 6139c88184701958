package driven

import "github.com/custodia-labs/marginalia/internal/core/domain"

// SignatureRasterizer turns captured signature input into an image payload.
type SignatureRasterizer interface {
	// Rasterize returns a data URL (data:image/png;base64,...).
	// The input is never empty; callers reject empty input first.
	Rasterize(in domain.SignatureInput) (string, error)
}
