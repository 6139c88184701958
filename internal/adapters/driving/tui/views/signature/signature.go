// Package signature provides the signature capture dialog: a drawing pad
// steered with the arrow keys, or a typed name in one of three fonts.
package signature

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

// Drawing pad size in cells. Same 3:1 aspect as the rendered signature.
const (
	PadWidth  = 60
	PadHeight = 20
)

// View is the signature dialog.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	ws     driving.WorkspaceService

	capture domain.Capture
	mode    domain.SignatureMode

	// Draw mode.
	cursor  domain.Point
	penDown bool
	strokes []domain.Stroke

	// Type mode.
	name textinput.Model
	font int

	err error
}

// NewView creates a signature dialog.
func NewView(s *styles.Styles, km *keymap.KeyMap, ws driving.WorkspaceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ti := textinput.New()
	ti.Placeholder = "Type your name"
	ti.CharLimit = 64
	ti.Width = 40

	return &View{
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		ws:     ws,
		mode:   domain.SignatureDraw,
		name:   ti,
	}
}

// WithContext sets the context used for workspace calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open resets the dialog for a new capture. The dialog starts in draw mode.
func (v *View) Open(c domain.Capture) tea.Cmd {
	v.capture = c
	v.mode = domain.SignatureDraw
	v.clearPad()
	v.name.Reset()
	v.name.Blur()
	v.font = 0
	v.err = nil
	return nil
}

// Update handles messages for the dialog.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.mode == domain.SignatureType {
			var cmd tea.Cmd
			v.name, cmd = v.name.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch {
	case key.Matches(keyMsg, v.keymap.Escape):
		v.ws.CancelCapture()
		return v, closed(domain.NoChange())
	case key.Matches(keyMsg, v.keymap.Save):
		return v, v.confirm()
	case key.Matches(keyMsg, v.keymap.SwitchMode):
		return v, v.switchMode()
	}

	if v.mode == domain.SignatureType {
		return v.updateType(keyMsg)
	}
	return v.updateDraw(keyMsg)
}

func (v *View) updateDraw(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Pen):
		v.penDown = !v.penDown
		if v.penDown {
			v.strokes = append(v.strokes, domain.Stroke{v.cursor})
		}
	case key.Matches(msg, v.keymap.Clear):
		v.clearPad()
	case key.Matches(msg, v.keymap.Up):
		v.move(0, -1)
	case key.Matches(msg, v.keymap.Down):
		v.move(0, 1)
	case key.Matches(msg, v.keymap.Left):
		v.move(-1, 0)
	case key.Matches(msg, v.keymap.Right):
		v.move(1, 0)
	}
	return v, nil
}

func (v *View) updateType(msg tea.KeyMsg) (*View, tea.Cmd) {
	fonts := domain.SignatureFonts()
	switch msg.Type {
	case tea.KeyEnter:
		return v, v.confirm()
	case tea.KeyUp:
		v.font = (v.font + len(fonts) - 1) % len(fonts)
		return v, nil
	case tea.KeyDown:
		v.font = (v.font + 1) % len(fonts)
		return v, nil
	}

	var cmd tea.Cmd
	v.name, cmd = v.name.Update(msg)
	return v, cmd
}

// move steps the pad cursor, extending the current stroke while the pen is down.
func (v *View) move(dx, dy float64) {
	next := domain.Point{X: v.cursor.X + dx, Y: v.cursor.Y + dy}
	if next.X < 0.5 || next.X > PadWidth-0.5 || next.Y < 0.5 || next.Y > PadHeight-0.5 {
		return
	}
	v.cursor = next
	if v.penDown {
		last := len(v.strokes) - 1
		v.strokes[last] = append(v.strokes[last], next)
	}
}

func (v *View) clearPad() {
	v.strokes = nil
	v.penDown = false
	v.cursor = domain.Point{X: PadWidth / 2, Y: PadHeight / 2}
	v.cursor.X += 0.5
	v.cursor.Y += 0.5
}

func (v *View) switchMode() tea.Cmd {
	v.err = nil
	if v.mode == domain.SignatureDraw {
		v.mode = domain.SignatureType
		v.penDown = false
		return v.name.Focus()
	}
	v.mode = domain.SignatureDraw
	v.name.Blur()
	return nil
}

// Input returns what the dialog would submit.
func (v *View) Input() domain.SignatureInput {
	if v.mode == domain.SignatureType {
		return domain.SignatureInput{
			Mode: domain.SignatureType,
			Name: v.name.Value(),
			Font: domain.SignatureFonts()[v.font],
		}
	}
	strokes := make([]domain.Stroke, len(v.strokes))
	copy(strokes, v.strokes)
	return domain.SignatureInput{
		Mode:      domain.SignatureDraw,
		Strokes:   strokes,
		PadWidth:  PadWidth,
		PadHeight: PadHeight,
	}
}

// confirm saves the signature. Every failure, including empty input,
// keeps the dialog open with the message shown.
func (v *View) confirm() tea.Cmd {
	_, ev, err := v.ws.ConfirmSignature(v.ctx, v.Input())
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
	b.WriteString(v.styles.Title.Render("Add Signature"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Page %d at (%.0f, %.0f)",
		v.capture.Page, v.capture.Position.X, v.capture.Position.Y)))
	b.WriteString("\n\n")

	b.WriteString(v.tab("Draw", v.mode == domain.SignatureDraw))
	b.WriteString(" ")
	b.WriteString(v.tab("Type", v.mode == domain.SignatureType))
	b.WriteString("\n\n")

	if v.mode == domain.SignatureType {
		b.WriteString(v.renderType())
	} else {
		b.WriteString(v.renderPad())
	}
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(v.errorText()))
		b.WriteString("\n")
	}
	if v.mode == domain.SignatureType {
		b.WriteString(v.styles.Help.Render("[↑/↓] font  [enter] save  [tab] draw  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[arrows] move  [space] pen  [ctrl+l] clear  [ctrl+s] save  [tab] type  [esc] cancel"))
	}
	return v.styles.Dialog.Render(b.String())
}

func (v *View) tab(label string, active bool) string {
	if active {
		return v.styles.Selected.Render(" " + label + " ")
	}
	return v.styles.Muted.Render(" " + label + " ")
}

func (v *View) renderType() string {
	var b strings.Builder
	b.WriteString(v.name.View())
	b.WriteString("\n\n")
	for i, f := range domain.SignatureFonts() {
		if i == v.font {
			b.WriteString(v.styles.Selected.Render(" " + f.Label() + " "))
		} else {
			b.WriteString(v.styles.Normal.Render(" " + f.Label() + " "))
		}
		b.WriteString(" ")
	}
	if name := strings.TrimSpace(v.name.Value()); name != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Signature.Render(name))
	}
	return b.String()
}

func (v *View) renderPad() string {
	ink := make(map[[2]int]bool)
	for _, s := range v.strokes {
		for _, p := range s {
			ink[[2]int{int(p.X), int(p.Y)}] = true
		}
	}
	cur := [2]int{int(v.cursor.X), int(v.cursor.Y)}

	var b strings.Builder
	for y := 0; y < PadHeight; y++ {
		var row strings.Builder
		for x := 0; x < PadWidth; x++ {
			c := [2]int{x, y}
			switch {
			case c == cur && v.penDown:
				row.WriteString(v.styles.Cursor.Render("●"))
			case c == cur:
				row.WriteString(v.styles.Cursor.Render("+"))
			case ink[c]:
				row.WriteString(v.styles.Signature.Render("•"))
			default:
				row.WriteString(v.styles.Page.Render(" "))
			}
		}
		b.WriteString(row.String())
		if y < PadHeight-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *View) errorText() string {
	msg := v.err.Error()
	// Empty input carries its prompt after the sentinel text.
	if i := strings.Index(msg, ": "); i >= 0 && strings.HasPrefix(msg, domain.ErrEmptySignature.Error()) {
		return msg[i+2:]
	}
	return "Error: " + msg
}

// Mode returns the active capture mode.
func (v *View) Mode() domain.SignatureMode {
	return v.mode
}

// PenDown reports whether the pen is touching the pad.
func (v *View) PenDown() bool {
	return v.penDown
}

// Err returns the last save error.
func (v *View) Err() error {
	return v.err
}
