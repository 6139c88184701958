package domain

import "math"

// Zoom bounds and the step used by stepped controls.
const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	ZoomStep    = 0.1
	DefaultZoom = 1.0
)

// DefaultColor is the initial highlight colour (yellow).
const DefaultColor = "#FFEB3B"

// ColorOption is a named entry of the colour palette.
type ColorOption struct {
	Value string
	Label string
}

// Palette returns the colours offered for highlight and underline.
func Palette() []ColorOption {
	return []ColorOption{
		{Value: "#FFEB3B", Label: "Yellow"},
		{Value: "#4CAF50", Label: "Green"},
		{Value: "#2196F3", Label: "Blue"},
		{Value: "#F44336", Label: "Red"},
		{Value: "#9C27B0", Label: "Purple"},
		{Value: "#FF9800", Label: "Orange"},
		{Value: "#00BCD4", Label: "Cyan"},
		{Value: "#607D8B", Label: "Blue Grey"},
	}
}

// ColorLabel returns the palette label for a colour value, or the value itself.
func ColorLabel(value string) string {
	for _, c := range Palette() {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Session is the ephemeral interaction state. Tool, Color, Zoom and
// Fullscreen survive a document change; Page and NumPages do not.
type Session struct {
	Tool       AnnotationType
	Color      string
	Page       int
	NumPages   int
	Zoom       float64
	Fullscreen bool
}

// DefaultSession returns the state before any document is loaded.
func DefaultSession() Session {
	return Session{
		Tool:  AnnotationHighlight,
		Color: DefaultColor,
		Page:  1,
		Zoom:  DefaultZoom,
	}
}

// ClampZoom bounds z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ClampPage bounds p to [1, numPages]. Without pages the result is 1.
func ClampPage(p, numPages int) int {
	if numPages < 1 || p < 1 {
		return 1
	}
	if p > numPages {
		return numPages
	}
	return p
}

// RoundZoom rounds z to one decimal, the resolution of stepped controls.
func RoundZoom(z float64) float64 {
	return math.Round(z*10) / 10
}

// ZoomPercent formats a zoom factor the way the toolbar shows it.
func ZoomPercent(z float64) int {
	return int(math.Round(z * 100))
}
