// Package page provides the workspace view: the page canvas, the tool bar
// and the layers panel.
package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/components/canvas"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/components/layers"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

const (
	layersWidth = 40

	// Rows taken by the tool bar and the document header.
	chromeRows = 3
)

// View is the annotation workspace.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	ws     driving.WorkspaceService

	canvas *canvas.Canvas
	layers *layers.Panel

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a workspace view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ws driving.WorkspaceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		ws:     ws,
		canvas: canvas.New(s),
		layers: layers.New(s),
	}
}

// WithContext sets the context used for workspace calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current page, if a document is open.
func (v *View) Init() tea.Cmd {
	return v.LoadPage()
}

// LoadPage returns a command that reads the current page from the workspace.
func (v *View) LoadPage() tea.Cmd {
	if v.ws == nil || v.ws.Document() == nil {
		return nil
	}
	page := v.ws.Session().Page
	return func() tea.Msg {
		size, err := v.ws.PageSize(page)
		if err != nil {
			return messages.PageLoaded{Page: page, Err: err}
		}
		runs, err := v.ws.TextLayer(page)
		if err != nil {
			return messages.PageLoaded{Page: page, Err: err}
		}
		annotations, err := v.ws.Annotations(v.ctx, page)
		if err != nil {
			return messages.PageLoaded{Page: page, Err: err}
		}
		return messages.PageLoaded{Page: page, Size: size, Runs: runs, Annotations: annotations}
	}
}

// Update handles messages for the workspace view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.PageLoaded:
		if v.ws == nil || msg.Page != v.ws.Session().Page {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.canvas.SetZoom(v.ws.Session().Zoom)
		v.canvas.SetPage(msg.Page, msg.Size, msg.Runs, msg.Annotations)
		v.layers.SetAnnotations(msg.Annotations)
		return v, nil

	case tea.KeyMsg:
		if v.ws == nil || v.ws.Document() == nil {
			return v, nil
		}
		if v.layers.Focused() {
			return v.handleLayersKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

//nolint:gocyclo // one case per binding
func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Highlight):
		return v, v.setTool(domain.AnnotationHighlight)
	case key.Matches(msg, v.keymap.Underline):
		return v, v.setTool(domain.AnnotationUnderline)
	case key.Matches(msg, v.keymap.Comment):
		return v, v.setTool(domain.AnnotationComment)
	case key.Matches(msg, v.keymap.Signature):
		return v, v.setTool(domain.AnnotationSignature)

	case key.Matches(msg, v.keymap.Up):
		v.canvas.Move(0, -1)
	case key.Matches(msg, v.keymap.Down):
		v.canvas.Move(0, 1)
	case key.Matches(msg, v.keymap.Left):
		v.canvas.Move(-1, 0)
	case key.Matches(msg, v.keymap.Right):
		v.canvas.Move(1, 0)

	case key.Matches(msg, v.keymap.Act):
		return v, v.act()

	case key.Matches(msg, v.keymap.NextPage):
		v.ws.NextPage()
		return v, v.LoadPage()
	case key.Matches(msg, v.keymap.PrevPage):
		v.ws.PrevPage()
		return v, v.LoadPage()

	case key.Matches(msg, v.keymap.ZoomIn):
		v.canvas.SetZoom(v.ws.ZoomIn())
	case key.Matches(msg, v.keymap.ZoomOut):
		v.canvas.SetZoom(v.ws.ZoomOut())

	case key.Matches(msg, v.keymap.Fullscreen):
		v.ws.ToggleFullscreen()
		v.layout()
	case key.Matches(msg, v.keymap.Escape):
		if v.canvas.Marking() {
			v.canvas.CancelMark()
			return v, nil
		}
		v.ws.Escape()
		v.layout()

	case key.Matches(msg, v.keymap.Color):
		v.ws.CycleColor()

	case key.Matches(msg, v.keymap.Undo):
		return v, v.undo()

	case key.Matches(msg, v.keymap.Layers):
		if !v.ws.Session().Fullscreen {
			v.layers.Focus()
		}
	}
	return v, nil
}

func (v *View) handleLayersKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.layers.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.layers.MoveDown()
	case key.Matches(msg, v.keymap.Delete):
		if a := v.layers.Selected(); a != nil {
			return v, v.remove(a.ID)
		}
	case key.Matches(msg, v.keymap.Layers), key.Matches(msg, v.keymap.Escape):
		v.layers.Blur()
	}
	return v, nil
}

func (v *View) setTool(tool domain.AnnotationType) tea.Cmd {
	v.canvas.CancelMark()
	ev, err := v.ws.SetTool(tool)
	return notify(ev, err)
}

// act places a point annotation at the cursor, or anchors and then commits a
// text selection for range tools.
func (v *View) act() tea.Cmd {
	if v.ws.Session().Tool.IsSelectionBased() {
		if !v.canvas.Marking() {
			v.canvas.StartMark()
			return nil
		}
		sel := v.canvas.Selection()
		origin := v.canvas.Origin()
		v.canvas.CancelMark()
		return func() tea.Msg {
			_, ev, err := v.ws.Select(v.ctx, sel, origin)
			return messages.Notified{Event: ev, Err: err}
		}
	}

	click, origin := v.canvas.Click()
	capture, err := v.ws.Click(click, origin)
	if err != nil {
		return notify(domain.NoChange(), err)
	}
	if capture == nil {
		return nil
	}
	c := *capture
	return func() tea.Msg {
		return messages.CaptureOpened{Capture: c}
	}
}

func (v *View) undo() tea.Cmd {
	return func() tea.Msg {
		ev, err := v.ws.UndoLast(v.ctx)
		return messages.Notified{Event: ev, Err: err}
	}
}

func (v *View) remove(id int64) tea.Cmd {
	return func() tea.Msg {
		ev, err := v.ws.Delete(v.ctx, id)
		return messages.Notified{Event: ev, Err: err}
	}
}

func notify(ev domain.Event, err error) tea.Cmd {
	return func() tea.Msg {
		return messages.Notified{Event: ev, Err: err}
	}
}

// View renders the workspace.
func (v *View) View() string {
	if v.ws == nil || v.ws.Document() == nil {
		return v.renderEmpty()
	}

	var b strings.Builder
	b.WriteString(v.renderToolbar())
	b.WriteString("\n")
	b.WriteString(v.renderHeader())
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		return b.String()
	}

	if v.ws.Session().Fullscreen {
		b.WriteString(v.canvas.View())
		return b.String()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, v.canvas.View(), " ", v.layers.View()))
	return b.String()
}

func (v *View) renderEmpty() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("marginalia"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("No document loaded. Press o to open a PDF."))
	return b.String()
}

func (v *View) renderToolbar() string {
	session := v.ws.Session()
	bindings := []key.Binding{v.keymap.Highlight, v.keymap.Underline, v.keymap.Comment, v.keymap.Signature}

	items := make([]string, 0, len(bindings))
	for i, tool := range domain.AnnotationTypes() {
		label := fmt.Sprintf("[%s] %s", bindings[i].Keys()[0], tool)
		if tool == session.Tool {
			items = append(items, v.styles.Selected.Render(label))
		} else {
			items = append(items, v.styles.Normal.Render(label))
		}
	}

	hint := session.Tool.Description()
	if v.canvas.Marking() {
		hint = "Move to the end of the text and press enter"
	}
	return strings.Join(items, " ") + "  " + v.styles.Muted.Render(hint)
}

// renderHeader summarises the document metadata.
func (v *View) renderHeader() string {
	doc := v.ws.Document()
	meta := doc.Metadata

	title := meta.Title
	if title == "" {
		title = doc.Name
	}
	parts := []string{v.styles.Subtitle.Render(title)}
	if meta.Author != "" {
		parts = append(parts, "by "+meta.Author)
	}
	if meta.CreationDate != "" {
		parts = append(parts, meta.CreationDate)
	}
	parts = append(parts,
		humanize.Comma(int64(doc.NumPages))+" "+plural(doc.NumPages, "page", "pages"),
		humanize.Bytes(uint64(doc.Size())),
	)
	return strings.Join(parts, v.styles.Muted.Render(" · "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// SetDimensions sets the space available to the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

func (v *View) layout() {
	h := max(v.height-chromeRows, 1)
	w := v.width
	if v.ws == nil || !v.ws.Session().Fullscreen {
		w -= layersWidth + 1
		v.layers.SetSize(layersWidth, h)
	} else {
		v.layers.Blur()
	}
	v.canvas.SetSize(max(w, 1), h)
}

// Canvas returns the page canvas.
func (v *View) Canvas() *canvas.Canvas {
	return v.canvas
}

// Layers returns the layers panel.
func (v *View) Layers() *layers.Panel {
	return v.layers
}

// Err returns the last page load error.
func (v *View) Err() error {
	return v.err
}
