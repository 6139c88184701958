package domain

import "strings"

// Selection is a live text selection reported by the rendering layer.
// Rect is in the viewport frame.
type Selection struct {
	Text string
	Rect Rect
}

// IsEmpty returns true if the selection has no text after trimming.
func (s *Selection) IsEmpty() bool {
	return s == nil || strings.TrimSpace(s.Text) == ""
}

// Clear deselects. A cleared selection resolves to nothing.
func (s *Selection) Clear() {
	if s == nil {
		return
	}
	*s = Selection{}
}
