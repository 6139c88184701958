// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette. Chrome colours style panels, dialogs and
// the status bar; page colours style the canvas that stands in for paper.
type Theme struct {
	// Chrome.
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color

	// Page.
	Paper lipgloss.Color
	Ink   lipgloss.Color
	Note  lipgloss.Color
	Pen   lipgloss.Color
}

// DefaultTheme returns the dark chrome around a light page.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Secondary:  lipgloss.Color("#06B6D4"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
		Bar:        lipgloss.Color("#181825"),

		Paper: lipgloss.Color("#FAFAF7"),
		Ink:   lipgloss.Color("#1F1F1F"),
		Note:  lipgloss.Color("#FFF9C4"),
		Pen:   lipgloss.Color("#1A237E"),
	}
}

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Help       lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Dialog     lipgloss.Style

	// Page is plain paper; the others paint cells on top of it.
	Page      lipgloss.Style
	Cursor    lipgloss.Style
	Marking   lipgloss.Style
	Comment   lipgloss.Style
	Signature lipgloss.Style
}

// NewStyles derives styles from theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	rounded := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())
	page := lipgloss.NewStyle().Foreground(theme.Ink).Background(theme.Paper)

	return &Styles{
		theme: theme,

		Title:      fg(theme.Primary).Bold(true),
		Subtitle:   fg(theme.Secondary).Bold(true),
		Normal:     fg(theme.Foreground),
		Muted:      fg(theme.Muted),
		Selected:   fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:      fg(theme.Error),
		Success:    fg(theme.Success),
		Warning:    fg(theme.Warning),
		Help:       fg(theme.Muted),
		InputField: rounded.BorderForeground(theme.Border).Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Dialog:     rounded.BorderForeground(theme.Primary).Padding(1, 2),

		Page:      page,
		Cursor:    page.Foreground(theme.Paper).Background(theme.Primary),
		Marking:   page.Background(theme.Secondary),
		Comment:   page.Background(theme.Note).Bold(true),
		Signature: page.Foreground(theme.Pen).Bold(true).Italic(true),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Highlight paints page text on an annotation colour.
func (s *Styles) Highlight(color string) lipgloss.Style {
	return s.Page.Background(lipgloss.Color(color))
}

// Underline draws page text underlined in an annotation colour.
func (s *Styles) Underline(color string) lipgloss.Style {
	return s.Page.Underline(true).Foreground(lipgloss.Color(color))
}

// Swatch renders a two-cell colour sample.
func (s *Styles) Swatch(color string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("  ")
}
