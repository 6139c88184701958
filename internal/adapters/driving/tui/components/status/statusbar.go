// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// State selects which keybinding hints the bar shows.
type State string

const (
	StateEmpty     State = "empty"
	StateReady     State = "ready"
	StateLayers    State = "layers"
	StateComment   State = "comment"
	StateSignature State = "signature"
)

// Bar displays the session state, the last notification and keybinding hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	state  State

	docName   string
	session   domain.Session
	exporting bool

	title       string
	description string
	err         error

	width int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles:  s,
		keymap:  km,
		state:   StateEmpty,
		session: domain.DefaultSession(),
		width:   80,
	}
}

// View renders the status bar on two lines: session and hints, then the
// last notification.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	bar := s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
	return bar + "\n" + s.renderNotice()
}

// renderLeft renders the session summary.
func (s *Bar) renderLeft() string {
	if s.docName == "" {
		return s.styles.Muted.Render("No document")
	}

	parts := []string{
		s.styles.Normal.Render(s.docName),
		fmt.Sprintf("page %d/%d", s.session.Page, s.session.NumPages),
		string(s.session.Tool),
	}
	if s.session.Tool.UsesColor() {
		parts = append(parts, s.styles.Swatch(s.session.Color)+" "+domain.ColorLabel(s.session.Color))
	}
	parts = append(parts, fmt.Sprintf("%d%%", domain.ZoomPercent(s.session.Zoom)))
	if s.session.Fullscreen {
		parts = append(parts, "fullscreen")
	}
	if s.exporting {
		parts = append(parts, s.styles.Warning.Render("Exporting document..."))
	}
	return strings.Join(parts, " · ")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding

	switch s.state {
	case StateEmpty:
		bindings = s.keymap.EmptyHelp()
	case StateLayers:
		bindings = s.keymap.LayersHelp()
	case StateComment:
		bindings = s.keymap.CommentHelp()
	case StateSignature:
		bindings = s.keymap.SignatureHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func (s *Bar) renderNotice() string {
	if s.err != nil {
		return s.styles.Error.Render("Error: " + s.err.Error())
	}
	if s.title == "" {
		return ""
	}
	notice := s.styles.Success.Render(s.title)
	if s.description != "" {
		notice += " " + s.styles.Muted.Render(s.description)
	}
	return notice
}

// SetState sets which hints are shown.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetSession updates the session summary.
func (s *Bar) SetSession(docName string, session domain.Session, exporting bool) {
	s.docName = docName
	s.session = session
	s.exporting = exporting
}

// Notify shows an event. Events that changed nothing leave the bar as is.
func (s *Bar) Notify(ev domain.Event) {
	if !ev.Changed() {
		return
	}
	s.title = ev.Title
	s.description = ev.Description
	s.err = nil
}

// SetError shows an error in place of the last notification.
func (s *Bar) SetError(err error) {
	s.err = err
}

// Err returns the error shown, if any.
func (s *Bar) Err() error {
	return s.err
}

// Notice returns the title of the last notification.
func (s *Bar) Notice() string {
	return s.title
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear drops the notification and any error.
func (s *Bar) Clear() {
	s.title = ""
	s.description = ""
	s.err = nil
}
