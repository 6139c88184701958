// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewWorkspace is the page canvas with the layers panel.
	ViewWorkspace ViewType = iota
	// ViewOpen prompts for a document path.
	ViewOpen
	// ViewComment is the comment capture dialog.
	ViewComment
	// ViewSignature is the signature capture dialog.
	ViewSignature
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewWorkspace:
		return "workspace"
	case ViewOpen:
		return "open"
	case ViewComment:
		return "comment"
	case ViewSignature:
		return "signature"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// OpenRequested asks the app to load the document at Path.
type OpenRequested struct {
	Path string
}

// DocumentLoaded carries the outcome of a load.
type DocumentLoaded struct {
	Event domain.Event
	Err   error
}

// DocumentReloaded is sent when the document changed on disk and was reloaded.
type DocumentReloaded struct {
	Event domain.Event
}

// PageLoaded carries the text layer, size and annotations of a page.
type PageLoaded struct {
	Page        int
	Size        domain.PageSize
	Runs        []domain.TextRun
	Annotations []domain.Annotation
	Err         error
}

// Notified carries the outcome of a mutation for display.
// A changed event also means the current page must be refreshed.
type Notified struct {
	Event domain.Event
	Err   error
}

// CaptureOpened is sent when a click opened a comment or signature capture.
type CaptureOpened struct {
	Capture domain.Capture
}

// CaptureClosed is sent when a dialog saved or cancelled its capture.
type CaptureClosed struct {
	Event domain.Event
}

// ExportCompleted carries the outcome of an export.
type ExportCompleted struct {
	Path   string
	Result *domain.ExportResult
	Event  domain.Event
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
