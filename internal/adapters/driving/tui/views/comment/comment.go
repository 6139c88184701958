// Package comment provides the comment capture dialog.
package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

// View is the comment dialog.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	ws     driving.WorkspaceService

	textarea textarea.Model
	format   domain.CommentFormat
	capture  domain.Capture
	err      error

	width  int
	height int
}

// NewView creates a comment dialog.
func NewView(s *styles.Styles, km *keymap.KeyMap, ws driving.WorkspaceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ta := textarea.New()
	ta.Placeholder = "Add your comment..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(50)
	ta.SetHeight(5)

	return &View{
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		ws:       ws,
		textarea: ta,
	}
}

// WithContext sets the context used for workspace calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open resets the dialog for a new capture.
func (v *View) Open(c domain.Capture) tea.Cmd {
	v.capture = c
	v.format = domain.CommentFormat{}
	v.err = nil
	v.textarea.Reset()
	return v.textarea.Focus()
}

// Update handles messages for the dialog.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Save):
			return v, v.confirm()
		case key.Matches(msg, v.keymap.Bold):
			v.format.Bold = !v.format.Bold
			return v, nil
		case key.Matches(msg, v.keymap.Italic):
			v.format.Italic = !v.format.Italic
			return v, nil
		case key.Matches(msg, v.keymap.Escape):
			v.ws.CancelCapture()
			return v, closed(domain.NoChange())
		}
	}

	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	return v, cmd
}

// confirm saves the comment. Empty text closes the dialog without a record;
// other failures keep it open with the error shown.
func (v *View) confirm() tea.Cmd {
	_, ev, err := v.ws.ConfirmComment(v.ctx, v.textarea.Value(), v.format)
	if errors.Is(err, domain.ErrEmptyComment) {
		return closed(domain.NoChange())
	}
	if err != nil {
		v.err = err
		return nil
	}
	return closed(ev)
}

func closed(ev domain.Event) tea.Cmd {
	return func() tea.Msg {
		return messages.CaptureClosed{Event: ev}
	}
}

// View renders the dialog.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Add Comment"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Page %d at (%.0f, %.0f)",
		v.capture.Page, v.capture.Position.X, v.capture.Position.Y)))
	b.WriteString("\n\n")

	b.WriteString(v.toggle("B", "bold", v.format.Bold))
	b.WriteString(" ")
	b.WriteString(v.toggle("I", "italic", v.format.Italic))
	b.WriteString("\n")
	b.WriteString(v.textarea.View())
	b.WriteString("\n")

	if preview := v.Preview(); preview != "" {
		b.WriteString(v.styles.Muted.Render("Saved as: " + preview))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[ctrl+s] save  [ctrl+b] bold  [alt+i] italic  [esc] cancel"))
	return v.styles.Dialog.Render(b.String())
}

func (v *View) toggle(label, name string, on bool) string {
	text := fmt.Sprintf("[%s] %s", label, name)
	if on {
		return v.styles.Selected.Render(text)
	}
	return v.styles.Muted.Render(text)
}

// Preview returns the text as it will be stored, or "" when empty.
func (v *View) Preview() string {
	text := v.textarea.Value()
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return domain.FormatComment(text, v.format)
}

// Format returns the active formatting toggles.
func (v *View) Format() domain.CommentFormat {
	return v.format
}

// Value returns the typed text.
func (v *View) Value() string {
	return v.textarea.Value()
}

// Err returns the last save error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the space available to the dialog.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.textarea.SetWidth(min(max(width-10, 20), 80))
}
