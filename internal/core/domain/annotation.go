package domain

import (
	"fmt"
	"time"
)

// AnnotationType identifies what kind of mark an annotation is.
type AnnotationType string

// Available annotation types.
const (
	// AnnotationHighlight paints a translucent box over selected text.
	AnnotationHighlight AnnotationType = "highlight"

	// AnnotationUnderline draws a coloured line under selected text.
	AnnotationUnderline AnnotationType = "underline"

	// AnnotationComment places a free-text note at a point.
	AnnotationComment AnnotationType = "comment"

	// AnnotationSignature places a signature image at a point.
	AnnotationSignature AnnotationType = "signature"
)

// AnnotationTypes lists every annotation type in toolbar order.
func AnnotationTypes() []AnnotationType {
	return []AnnotationType{
		AnnotationHighlight,
		AnnotationUnderline,
		AnnotationComment,
		AnnotationSignature,
	}
}

// ParseAnnotationType converts a string to an AnnotationType.
func ParseAnnotationType(s string) (AnnotationType, error) {
	t := AnnotationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown annotation type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// IsValid returns true if the annotation type is recognised.
func (t AnnotationType) IsValid() bool {
	switch t {
	case AnnotationHighlight, AnnotationUnderline, AnnotationComment, AnnotationSignature:
		return true
	default:
		return false
	}
}

// IsSelectionBased returns true for types created from a text selection.
func (t AnnotationType) IsSelectionBased() bool {
	return t == AnnotationHighlight || t == AnnotationUnderline
}

// IsPointBased returns true for types created from a single click.
func (t AnnotationType) IsPointBased() bool {
	return t == AnnotationComment || t == AnnotationSignature
}

// UsesColor returns true if the colour is meaningful for this type.
func (t AnnotationType) UsesColor() bool {
	return t.IsSelectionBased()
}

// String returns the string representation.
func (t AnnotationType) String() string {
	return string(t)
}

// Description returns the interaction hint shown when the tool is selected.
func (t AnnotationType) Description() string {
	switch t {
	case AnnotationHighlight:
		return "Click and drag to highlight text"
	case AnnotationUnderline:
		return "Click and drag to underline text"
	case AnnotationComment:
		return "Click anywhere to add a comment"
	case AnnotationSignature:
		return "Click anywhere to place your signature"
	default:
		return ""
	}
}

// Point is a position in the unscaled page frame, origin at the top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Rect is an axis-aligned rectangle, origin at the top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the top-left corner of the rectangle.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Annotation is a single user-added mark anchored to one page.
// ID, Type, Page and CreatedAt never change once the record exists.
type Annotation struct {
	// ID is unique across the session and grows with insertion order.
	ID int64 `json:"id"`

	// Type selects how the annotation is rendered.
	Type AnnotationType `json:"type"`

	// Page is the 1-based page the annotation belongs to.
	Page int `json:"page"`

	// Position is page-relative and independent of zoom.
	Position Point `json:"position"`

	// Color is only set for highlight and underline.
	Color string `json:"color,omitempty"`

	// Data holds the comment text, the signature image data URL,
	// or the selected text for highlight and underline.
	Data string `json:"data,omitempty"`

	// BoundingRect sizes highlight and underline overlays.
	BoundingRect *Rect `json:"boundingRect,omitempty"`

	// CreatedAt is when the annotation was added.
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the annotation against a document with numPages pages.
func (a *Annotation) Validate(numPages int) error {
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: unknown annotation type %q", ErrInvalidInput, a.Type)
	}
	if a.Page < 1 || (numPages > 0 && a.Page > numPages) {
		return fmt.Errorf("%w: page %d outside 1..%d", ErrInvalidInput, a.Page, numPages)
	}
	if a.Type.IsSelectionBased() && a.BoundingRect == nil {
		return fmt.Errorf("%w: %s annotation without bounding rectangle", ErrInvalidInput, a.Type)
	}
	return nil
}

// Draft is the partial record produced by an interaction. The ambient tool,
// colour and page complete it into an Annotation.
type Draft struct {
	// Position is nil when the interaction supplied none.
	Position *Point `json:"position,omitempty"`

	// Data is the payload for the annotation.
	Data string `json:"data,omitempty"`

	// BoundingRect is set for selection-based drafts.
	BoundingRect *Rect `json:"boundingRect,omitempty"`
}

// AnnotationRequest describes a whole annotation for non-interactive callers
// (the export command and MCP tools). Comment text is formatted and typed
// signatures are rasterised the same way the dialogs do it.
type AnnotationRequest struct {
	Type AnnotationType `json:"type"`

	// Page is 1-based; zero means the current page.
	Page int `json:"page,omitempty"`

	Position Point `json:"position"`

	// Color, when set, also becomes the current colour.
	Color string `json:"color,omitempty"`

	// Data is the highlighted text, the comment text or a signature data URL.
	Data string `json:"data,omitempty"`

	BoundingRect *Rect `json:"boundingRect,omitempty"`

	// Bold and Italic format comment text.
	Bold   bool `json:"bold,omitempty"`
	Italic bool `json:"italic,omitempty"`

	// Name and Font describe a typed signature used when Data is empty.
	Name string        `json:"name,omitempty"`
	Font SignatureFont `json:"font,omitempty"`
}
