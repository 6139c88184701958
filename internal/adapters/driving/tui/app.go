package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/views/comment"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/views/open"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/views/page"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/views/signature"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// statusRows is the height of the status bar.
const statusRows = 2

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	pageView      *page.View
	openView      *open.View
	commentView   *comment.View
	signatureView *signature.View
	statusBar     *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// initialPath is opened on start when set.
	initialPath string

	// exportDir receives exported files; empty means next to the document.
	exportDir string

	// lastExport is the path of the last written export.
	lastExport string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	ws := ports.Workspace

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		pageView:      page.NewView(s, km, ws),
		openView:      open.NewView(s),
		commentView:   comment.NewView(s, km, ws),
		signatureView: signature.NewView(s, km, ws),
		statusBar:     status.NewBar(s, km),
		currentView:   messages.ViewWorkspace,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.pageView.WithContext(ctx)
	a.commentView.WithContext(ctx)
	a.signatureView.WithContext(ctx)
	return a
}

// WithInitialPath opens path when the program starts.
func (a *App) WithInitialPath(path string) *App {
	a.initialPath = path
	return a
}

// WithExportDir sets the directory exports are written to.
func (a *App) WithExportDir(dir string) *App {
	a.exportDir = dir
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("marginalia"),
		a.waitForReload(),
	}
	if a.initialPath != "" {
		cmds = append(cmds, a.openFile(a.initialPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewOpen {
			a.openView.Reset()
			return a, a.openView.Init()
		}
		return a, nil

	case messages.OpenRequested:
		a.currentView = messages.ViewWorkspace
		return a, a.openFile(msg.Path)

	case messages.DocumentLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.notify(msg.Event)
		return a, a.pageView.LoadPage()

	case messages.DocumentReloaded:
		a.notify(msg.Event)
		return a, tea.Batch(a.pageView.LoadPage(), a.waitForReload())

	case messages.PageLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
		}
		a.pageView, cmd = a.pageView.Update(msg)
		return a, cmd

	case messages.Notified:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.notify(msg.Event)
		if msg.Event.Changed() {
			return a, a.pageView.LoadPage()
		}
		return a, nil

	case messages.CaptureOpened:
		switch msg.Capture.Kind {
		case domain.CaptureComment:
			a.currentView = messages.ViewComment
			return a, a.commentView.Open(msg.Capture)
		case domain.CaptureSignature:
			a.currentView = messages.ViewSignature
			return a, a.signatureView.Open(msg.Capture)
		}
		return a, nil

	case messages.CaptureClosed:
		a.currentView = messages.ViewWorkspace
		if !msg.Event.Changed() {
			return a, nil
		}
		a.notify(msg.Event)
		return a, a.pageView.LoadPage()

	case messages.ExportCompleted:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.lastExport = msg.Path
		ev := msg.Event
		ev.Description = strings.TrimSpace(ev.Description + " Saved to " + msg.Path)
		a.notify(ev)
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		a.persistSession()
		return a, tea.Quit
	}

	// Forward other messages (cursor blink and the like) to the active view.
	switch a.currentView {
	case messages.ViewOpen:
		a.openView, cmd = a.openView.Update(msg)
	case messages.ViewComment:
		a.commentView, cmd = a.commentView.Update(msg)
	case messages.ViewSignature:
		a.signatureView, cmd = a.signatureView.Update(msg)
	case messages.ViewWorkspace, messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg.Type == tea.KeyCtrlC {
		a.persistSession()
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewOpen:
		a.openView, cmd = a.openView.Update(msg)
		return a, cmd

	case messages.ViewComment:
		a.commentView, cmd = a.commentView.Update(msg)
		return a, cmd

	case messages.ViewSignature:
		a.signatureView, cmd = a.signatureView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Help) || key.Matches(msg, a.keymap.Escape) {
			a.currentView = messages.ViewWorkspace
		}
		return a, nil
	}

	// The layers panel owns the keyboard while focused.
	if !a.pageView.Layers().Focused() {
		switch {
		case key.Matches(msg, a.keymap.Quit):
			a.persistSession()
			return a, tea.Quit
		case key.Matches(msg, a.keymap.Help):
			a.currentView = messages.ViewHelp
			return a, nil
		case key.Matches(msg, a.keymap.Open):
			a.currentView = messages.ViewOpen
			a.openView.Reset()
			return a, a.openView.Init()
		case key.Matches(msg, a.keymap.Export):
			return a, a.export()
		}
	}

	a.pageView, cmd = a.pageView.Update(msg)
	return a, cmd
}

// openFile returns a command that reads path and loads it into the workspace.
func (a *App) openFile(path string) tea.Cmd {
	ws := a.ports.Workspace
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return messages.DocumentLoaded{Err: fmt.Errorf("read %s: %w", path, err)}
		}
		ev, err := ws.Load(a.ctx, driving.DocumentSource{
			Name: filepath.Base(path),
			Path: path,
			Data: data,
		})
		return messages.DocumentLoaded{Event: ev, Err: err}
	}
}

// waitForReload returns a command that blocks until the workspace reloads
// the document after a change on disk.
func (a *App) waitForReload() tea.Cmd {
	reloads := a.ports.Workspace.Reloads()
	return func() tea.Msg {
		select {
		case ev := <-reloads:
			return messages.DocumentReloaded{Event: ev}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// export returns a command that writes the annotated document. It does
// nothing without a document or while an export is running.
func (a *App) export() tea.Cmd {
	ws := a.ports.Workspace
	doc := ws.Document()
	if doc == nil || ws.Exporting() {
		return nil
	}
	path := domain.ExportPath(doc, a.exportDir)
	a.statusBar.Clear()

	return func() tea.Msg {
		result, ev, err := ws.Export(a.ctx)
		if err != nil {
			return messages.ExportCompleted{Path: path, Err: err}
		}
		if err := os.WriteFile(path, result.Data, 0o644); err != nil {
			return messages.ExportCompleted{Path: path, Err: fmt.Errorf("write %s: %w", path, err)}
		}
		logger.Info("exported %s (%d applied, %d skipped)", path, result.Applied, len(result.Skipped))
		return messages.ExportCompleted{Path: path, Result: result, Event: ev}
	}
}

// persistSession stores the tool, colour and zoom in use so the next
// session starts with them.
func (a *App) persistSession() {
	if a.ports.Settings == nil {
		return
	}
	s := a.ports.Workspace.Session()
	values := []struct{ key, value string }{
		{"annotate.tool", s.Tool.String()},
		{"annotate.color", s.Color},
		{"view.zoom", strconv.FormatFloat(s.Zoom, 'f', -1, 64)},
	}
	for _, v := range values {
		if err := a.ports.Settings.Set(v.key, v.value); err != nil {
			logger.Warn("save %s: %v", v.key, err)
		}
	}
}

func (a *App) notify(ev domain.Event) {
	a.err = nil
	a.statusBar.Notify(ev)
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetError(err)
	logger.Debug("tui error: %v", err)
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewOpen:
		body = a.openView.View()
	case messages.ViewComment:
		body = a.overlay(a.commentView.View())
	case messages.ViewSignature:
		body = a.overlay(a.signatureView.View())
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.pageView.View()
	}

	a.syncStatus()
	body = lipgloss.NewStyle().Height(max(a.height-statusRows, 1)).MaxHeight(max(a.height-statusRows, 1)).Render(body)
	return body + "\n" + a.statusBar.View()
}

// overlay centres a dialog in the page area.
func (a *App) overlay(dialog string) string {
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.Place(a.width, max(a.height-statusRows, 1), lipgloss.Center, lipgloss.Center, dialog)
}

func (a *App) syncStatus() {
	ws := a.ports.Workspace
	name := ""
	if doc := ws.Document(); doc != nil {
		name = doc.Name
	}
	a.statusBar.SetSession(name, ws.Session(), ws.Exporting())

	switch {
	case a.currentView == messages.ViewComment:
		a.statusBar.SetState(status.StateComment)
	case a.currentView == messages.ViewSignature:
		a.statusBar.SetState(status.StateSignature)
	case name == "":
		a.statusBar.SetState(status.StateEmpty)
	case a.pageView.Layers().Focused():
		a.statusBar.SetState(status.StateLayers)
	default:
		a.statusBar.SetState(status.StateReady)
	}
}

// viewHelp renders the help view from the key map.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	groups := []string{"General", "Tools", "Cursor", "View", "Editing"}
	for i, group := range a.keymap.FullHelp() {
		if i < len(groups) {
			b.WriteString(a.styles.Subtitle.Render(groups[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// LastExport returns the path of the last written export.
func (a *App) LastExport() string {
	return a.lastExport
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	body := max(height-statusRows, 1)
	a.pageView.SetDimensions(width, body)
	a.openView.SetDimensions(width, body)
	a.commentView.SetDimensions(width, body)
	a.statusBar.SetWidth(width)
}
