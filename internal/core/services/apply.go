package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// Apply stores a complete annotation request in one step. The session tool
// and page are left unchanged; a request colour becomes the current colour.
func (w *Workspace) Apply(ctx context.Context, req domain.AnnotationRequest) (*domain.Annotation, domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc == nil {
		return nil, domain.NoChange(), domain.ErrNoDocument
	}
	if !req.Type.IsValid() {
		return nil, domain.NoChange(), fmt.Errorf("%w: unknown annotation type %q", domain.ErrInvalidInput, req.Type)
	}

	page := req.Page
	if page == 0 {
		page = w.ctrl.Session().Page
	}
	recolor := req.Color != "" && req.Type.UsesColor()
	if recolor && !hexColor.MatchString(req.Color) {
		return nil, domain.NoChange(), fmt.Errorf("%w: color %q is not #RRGGBB", domain.ErrInvalidInput, req.Color)
	}

	data := req.Data
	switch req.Type {
	case domain.AnnotationComment:
		if strings.TrimSpace(data) == "" {
			return nil, domain.NoChange(), domain.ErrEmptyComment
		}
		data = domain.FormatComment(data, domain.CommentFormat{Bold: req.Bold, Italic: req.Italic})
	case domain.AnnotationSignature:
		if data != "" {
			break
		}
		in := domain.SignatureInput{Mode: domain.SignatureType, Name: req.Name, Font: req.Font}
		if in.IsEmpty() {
			return nil, domain.NoChange(), fmt.Errorf("%w: %s", domain.ErrEmptySignature, in.EmptyMessage())
		}
		url, err := w.rasterizer.Rasterize(in)
		if err != nil {
			return nil, domain.NoChange(), fmt.Errorf("rasterize signature: %w", err)
		}
		data = url
	}

	// The colour is committed only when the annotation is stored.
	previous := w.ctrl.Session().Color
	if recolor {
		_ = w.ctrl.SetColor(req.Color)
	}
	pos := req.Position
	a, ev, err := w.addLocked(ctx, req.Type, page, domain.Draft{
		Position:     &pos,
		Data:         data,
		BoundingRect: req.BoundingRect,
	})
	if err != nil {
		w.ctrl.session.Color = previous
		return nil, domain.NoChange(), err
	}
	return a, ev, nil
}
