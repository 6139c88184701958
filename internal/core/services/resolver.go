package services

import (
	"strings"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// ResolvePoint converts a click in the viewport frame into a page-relative
// position in the unscaled frame. origin is the top-left of the page
// container in the viewport; zoom is the factor the page is displayed at.
func ResolvePoint(click, origin domain.Point, zoom float64) domain.Point {
	return click.Sub(origin).Scale(1 / effectiveZoom(zoom))
}

// ResolveRange converts a text selection into a selection-based draft.
// The selection is cleared on success so it cannot resolve twice.
// An empty or whitespace-only selection yields (nil, false).
func ResolveRange(sel *domain.Selection, origin domain.Point, zoom float64) (*domain.Draft, bool) {
	if sel.IsEmpty() {
		return nil, false
	}
	z := effectiveZoom(zoom)
	pos := sel.Rect.Origin().Sub(origin).Scale(1 / z)
	draft := &domain.Draft{
		Position: &pos,
		Data:     strings.TrimSpace(sel.Text),
		BoundingRect: &domain.Rect{
			X:      pos.X,
			Y:      pos.Y,
			Width:  sel.Rect.Width / z,
			Height: sel.Rect.Height / z,
		},
	}
	sel.Clear()
	return draft, true
}

// ToViewport maps a stored page position back into the viewport frame.
func ToViewport(pos, origin domain.Point, zoom float64) domain.Point {
	return pos.Scale(effectiveZoom(zoom)).Add(origin)
}

func effectiveZoom(zoom float64) float64 {
	if zoom <= 0 {
		return domain.DefaultZoom
	}
	return zoom
}
