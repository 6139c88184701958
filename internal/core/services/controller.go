package services

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Controller tracks the tool and view state of a session and decides the
// creation path of an interaction. It is not safe for concurrent use;
// Workspace serialises access.
type Controller struct {
	session domain.Session
	title   cases.Caser
}

// NewController creates a controller starting from initial.
// Out-of-range values are clamped.
func NewController(initial domain.Session) *Controller {
	if !initial.Tool.IsValid() {
		initial.Tool = domain.AnnotationHighlight
	}
	if initial.Color == "" {
		initial.Color = domain.DefaultColor
	}
	if initial.Zoom == 0 {
		initial.Zoom = domain.DefaultZoom
	}
	initial.Zoom = domain.ClampZoom(initial.Zoom)
	initial.Page = domain.ClampPage(initial.Page, initial.NumPages)
	return &Controller{
		session: initial,
		title:   cases.Title(language.English),
	}
}

// Session returns a copy of the current state.
func (c *Controller) Session() domain.Session {
	return c.session
}

// SetTool selects the active tool and describes how to use it.
func (c *Controller) SetTool(tool domain.AnnotationType) (domain.Event, error) {
	if !tool.IsValid() {
		return domain.NoChange(), fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidInput, tool)
	}
	c.session.Tool = tool
	return domain.Event{
		Kind:        domain.EventToolChanged,
		Title:       c.title.String(tool.String()) + " tool selected",
		Description: tool.Description(),
	}, nil
}

// ResetDocument adopts a new page count and returns to page 1.
// Tool, colour, zoom and fullscreen are kept.
func (c *Controller) ResetDocument(numPages int) {
	c.session.NumPages = numPages
	c.session.Page = 1
}

// SetPage moves to page, clamped to the document. Returns the new page.
func (c *Controller) SetPage(page int) int {
	c.session.Page = domain.ClampPage(page, c.session.NumPages)
	return c.session.Page
}

// NextPage moves one page forward, stopping at the last page.
func (c *Controller) NextPage() int {
	return c.SetPage(c.session.Page + 1)
}

// PrevPage moves one page back, stopping at page 1.
func (c *Controller) PrevPage() int {
	return c.SetPage(c.session.Page - 1)
}

// ZoomIn increases zoom by one step.
func (c *Controller) ZoomIn() float64 {
	return c.stepZoom(domain.ZoomStep)
}

// ZoomOut decreases zoom by one step.
func (c *Controller) ZoomOut() float64 {
	return c.stepZoom(-domain.ZoomStep)
}

func (c *Controller) stepZoom(delta float64) float64 {
	c.session.Zoom = domain.ClampZoom(domain.RoundZoom(c.session.Zoom + delta))
	return c.session.Zoom
}

// SetZoom sets a continuous zoom factor, clamped to the allowed range.
func (c *Controller) SetZoom(z float64) float64 {
	c.session.Zoom = domain.ClampZoom(z)
	return c.session.Zoom
}

// ToggleFullscreen flips fullscreen and returns the new value.
func (c *Controller) ToggleFullscreen() bool {
	c.session.Fullscreen = !c.session.Fullscreen
	return c.session.Fullscreen
}

// Escape leaves fullscreen. Calling it outside fullscreen does nothing.
func (c *Controller) Escape() bool {
	c.session.Fullscreen = false
	return c.session.Fullscreen
}

// SetColor sets the highlight and underline colour (#RRGGBB).
func (c *Controller) SetColor(color string) error {
	if !hexColor.MatchString(color) {
		return fmt.Errorf("%w: color %q is not #RRGGBB", domain.ErrInvalidInput, color)
	}
	c.session.Color = strings.ToUpper(color)
	return nil
}

// CycleColor moves to the next palette colour and returns it.
// A colour outside the palette moves to the first entry.
func (c *Controller) CycleColor() string {
	palette := domain.Palette()
	next := 0
	for i, opt := range palette {
		if opt.Value == c.session.Color {
			next = (i + 1) % len(palette)
			break
		}
	}
	c.session.Color = palette[next].Value
	return c.session.Color
}

// Route returns the creation path for the active tool.
func (c *Controller) Route() domain.Route {
	return RouteFor(c.session.Tool)
}

// RouteFor returns the creation path for tool.
func RouteFor(tool domain.AnnotationType) domain.Route {
	switch tool {
	case domain.AnnotationSignature:
		return domain.RouteSignature
	case domain.AnnotationComment:
		return domain.RouteComment
	default:
		return domain.RouteRange
	}
}
