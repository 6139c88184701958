package domain

import "strings"

// CaptureKind identifies the dialog a point interaction opened.
type CaptureKind string

// Capture kinds.
const (
	CaptureNone      CaptureKind = ""
	CaptureComment   CaptureKind = "comment"
	CaptureSignature CaptureKind = "signature"
)

// Capture is an open comment or signature dialog anchored to a point.
type Capture struct {
	Kind     CaptureKind
	Page     int
	Position Point
}

// IsOpen returns true if a dialog is waiting for confirmation.
func (c *Capture) IsOpen() bool {
	return c != nil && c.Kind != CaptureNone
}

// CommentFormat holds the bold and italic toggles of the comment dialog.
type CommentFormat struct {
	Bold   bool
	Italic bool
}

// FormatComment wraps text in the display markers for the active toggles.
// Italic wraps the bold-wrapped string when both are set.
func FormatComment(text string, f CommentFormat) string {
	out := text
	if f.Bold {
		out = "**" + out + "**"
	}
	if f.Italic {
		out = "*" + out + "*"
	}
	return out
}

// StripCommentMarkers reverses FormatComment and reports the toggles found.
func StripCommentMarkers(s string) (string, CommentFormat) {
	wrapped := func(marker string) bool {
		return len(s) > 2*len(marker) && strings.HasPrefix(s, marker) && strings.HasSuffix(s, marker)
	}
	switch {
	case wrapped("***"):
		return s[3 : len(s)-3], CommentFormat{Bold: true, Italic: true}
	case wrapped("**"):
		return s[2 : len(s)-2], CommentFormat{Bold: true}
	case wrapped("*"):
		return s[1 : len(s)-1], CommentFormat{Italic: true}
	default:
		return s, CommentFormat{}
	}
}

// SignatureMode selects how a signature is captured.
type SignatureMode string

// Signature modes.
const (
	SignatureDraw SignatureMode = "draw"
	SignatureType SignatureMode = "type"
)

// SignatureFont is the display font of a typed signature.
type SignatureFont string

// Signature fonts offered by the dialog.
const (
	FontSignature   SignatureFont = "signature"
	FontHandwritten SignatureFont = "handwritten"
	FontStandard    SignatureFont = "standard"
)

// SignatureFonts lists the fonts in dialog order.
func SignatureFonts() []SignatureFont {
	return []SignatureFont{FontSignature, FontHandwritten, FontStandard}
}

// Label returns the button label of the font.
func (f SignatureFont) Label() string {
	switch f {
	case FontSignature:
		return "Signature"
	case FontHandwritten:
		return "Handwritten"
	case FontStandard:
		return "Standard"
	default:
		return string(f)
	}
}

// Stroke is one continuous pen movement on the signature pad,
// in pad coordinates.
type Stroke []Point

// SignatureInput is what the signature dialog submits.
type SignatureInput struct {
	Mode SignatureMode

	// Strokes are used in draw mode.
	Strokes []Stroke

	// PadWidth and PadHeight give the drawing pad extent for Strokes.
	PadWidth  float64
	PadHeight float64

	// Name and Font are used in type mode.
	Name string
	Font SignatureFont
}

// IsEmpty reports whether the input has nothing to save.
func (in SignatureInput) IsEmpty() bool {
	switch in.Mode {
	case SignatureDraw:
		for _, s := range in.Strokes {
			if len(s) > 0 {
				return false
			}
		}
		return true
	case SignatureType:
		return strings.TrimSpace(in.Name) == ""
	default:
		return true
	}
}

// EmptyMessage is the prompt shown when an empty signature is rejected.
func (in SignatureInput) EmptyMessage() string {
	if in.Mode == SignatureDraw {
		return "Please draw your signature before saving"
	}
	return "Please type your name before saving"
}

// Route is the creation path an interaction takes for a tool.
type Route string

// Creation paths.
const (
	// RouteRange commits directly from a text selection, without a dialog.
	RouteRange Route = "range"

	// RouteComment opens the comment dialog.
	RouteComment Route = "comment"

	// RouteSignature opens the signature dialog.
	RouteSignature Route = "signature"
)
