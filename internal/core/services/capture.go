package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

const markedTextPreview = 30

// Click handles a point interaction. Comment and signature tools open their
// capture at the resolved position; other tools ignore the click.
// Opening a capture replaces any capture already open.
func (w *Workspace) Click(click, origin domain.Point) (*domain.Capture, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc == nil {
		return nil, domain.ErrNoDocument
	}

	s := w.ctrl.Session()
	var kind domain.CaptureKind
	switch w.ctrl.Route() {
	case domain.RouteComment:
		kind = domain.CaptureComment
	case domain.RouteSignature:
		kind = domain.CaptureSignature
	default:
		return nil, nil
	}

	w.capture = &domain.Capture{
		Kind:     kind,
		Page:     s.Page,
		Position: ResolvePoint(click, origin, s.Zoom),
	}
	c := *w.capture
	return &c, nil
}

// Select commits a highlight or underline from a text selection.
// Selections made with a point tool, and empty selections, are ignored and
// left in place.
func (w *Workspace) Select(
	ctx context.Context, sel *domain.Selection, origin domain.Point,
) (*domain.Annotation, domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc == nil {
		return nil, domain.NoChange(), domain.ErrNoDocument
	}
	if w.ctrl.Route() != domain.RouteRange {
		return nil, domain.NoChange(), nil
	}

	s := w.ctrl.Session()
	draft, ok := ResolveRange(sel, origin, s.Zoom)
	if !ok {
		return nil, domain.NoChange(), nil
	}

	a, _, err := w.addLocked(ctx, s.Tool, s.Page, *draft)
	if err != nil {
		return nil, domain.NoChange(), err
	}

	title := "Text highlighted"
	if a.Type == domain.AnnotationUnderline {
		title = "Text underlined"
	}
	return a, domain.Event{
		Kind:        domain.EventTextMarked,
		Title:       title,
		Description: fmt.Sprintf("%q", Truncate(a.Data, markedTextPreview)),
		Annotation:  a,
	}, nil
}

// Capture returns a copy of the open capture, or nil.
func (w *Workspace) Capture() *domain.Capture {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.capture.IsOpen() {
		return nil
	}
	c := *w.capture
	return &c
}

// CancelCapture discards the open capture. Nothing is stored.
func (w *Workspace) CancelCapture() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.capture = nil
}

// ConfirmComment stores the comment of the open comment capture.
// Text that is empty after trimming closes the capture without a record
// and returns ErrEmptyComment.
func (w *Workspace) ConfirmComment(
	ctx context.Context, text string, format domain.CommentFormat,
) (*domain.Annotation, domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.openCaptureLocked(domain.CaptureComment)
	if err != nil {
		return nil, domain.NoChange(), err
	}
	if strings.TrimSpace(text) == "" {
		w.capture = nil
		return nil, domain.NoChange(), domain.ErrEmptyComment
	}

	pos := c.Position
	a, ev, err := w.addLocked(ctx, domain.AnnotationComment, c.Page, domain.Draft{
		Position: &pos,
		Data:     domain.FormatComment(text, format),
	})
	if err != nil {
		return nil, domain.NoChange(), err
	}
	w.capture = nil
	return a, ev, nil
}

// ConfirmSignature rasterises the input and stores the signature of the open
// signature capture. Empty input returns ErrEmptySignature and keeps the
// capture open.
func (w *Workspace) ConfirmSignature(
	ctx context.Context, in domain.SignatureInput,
) (*domain.Annotation, domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.openCaptureLocked(domain.CaptureSignature)
	if err != nil {
		return nil, domain.NoChange(), err
	}
	if in.IsEmpty() {
		return nil, domain.NoChange(), fmt.Errorf("%w: %s", domain.ErrEmptySignature, in.EmptyMessage())
	}

	dataURL, err := w.rasterizer.Rasterize(in)
	if err != nil {
		return nil, domain.NoChange(), fmt.Errorf("rasterize signature: %w", err)
	}

	pos := c.Position
	a, ev, err := w.addLocked(ctx, domain.AnnotationSignature, c.Page, domain.Draft{
		Position: &pos,
		Data:     dataURL,
	})
	if err != nil {
		return nil, domain.NoChange(), err
	}
	w.capture = nil
	return a, ev, nil
}

func (w *Workspace) openCaptureLocked(kind domain.CaptureKind) (*domain.Capture, error) {
	if w.doc == nil {
		return nil, domain.ErrNoDocument
	}
	if !w.capture.IsOpen() || w.capture.Kind != kind {
		return nil, fmt.Errorf("%w: no %s dialog open", domain.ErrNoCapture, kind)
	}
	return w.capture, nil
}

// Truncate shortens s to n runes followed by "..." when it is longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
