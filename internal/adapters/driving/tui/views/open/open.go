// Package open provides the view that asks for a document path.
package open

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
)

// View prompts for the path of a PDF to load.
type View struct {
	styles *styles.Styles
	input  *input.PathInput
	home   string
	width  int
	height int
}

// NewView creates an open view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	home, _ := os.UserHomeDir()
	return &View{
		styles: s,
		input:  input.NewPathInput(s),
		home:   home,
	}
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Focus(), v.input.Init())
}

// Reset clears the entered path.
func (v *View) Reset() {
	v.input.Reset()
}

// Update handles messages for the open view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			path := v.input.Path(v.home)
			if path == "" {
				return v, nil
			}
			return v, func() tea.Msg {
				return messages.OpenRequested{Path: path}
			}
		case tea.KeyEsc:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewWorkspace}
			}
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the open view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Open Document"))
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("PDF files up to the configured size limit."))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width - 4)
}

// Value returns the entered text.
func (v *View) Value() string {
	return v.input.Value()
}
