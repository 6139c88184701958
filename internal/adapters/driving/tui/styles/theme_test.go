package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Foreground, theme.Muted, theme.Success,
		theme.Warning, theme.Error, theme.Border, theme.Bar, theme.Paper, theme.Ink, theme.Note, theme.Pen,
	} {
		assert.NotEmpty(t, string(c))
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[string]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error} {
		s := string(c)
		assert.False(t, seen[s], "duplicate accent: %s", s)
		seen[s] = true
	}
}

func TestNewStyles_WithTheme(t *testing.T) {
	theme := DefaultTheme()
	styles := NewStyles(theme)

	require.NotNil(t, styles)
	assert.Equal(t, theme, styles.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.NotNil(t, styles.Theme())
}

func TestStyles_AnnotationStyles(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, lipgloss.Color("#4CAF50"), s.Highlight("#4CAF50").GetBackground())
	assert.True(t, s.Underline("#F44336").GetUnderline())
	assert.Equal(t, lipgloss.Color("#F44336"), s.Underline("#F44336").GetForeground())
	assert.NotEmpty(t, s.Swatch("#FFEB3B"))
}

func TestStyles_PageLayers(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)

	assert.Equal(t, theme.Paper, s.Page.GetBackground())
	assert.Equal(t, theme.Paper, s.Signature.GetBackground())
	assert.Equal(t, theme.Pen, s.Signature.GetForeground())
	assert.Equal(t, theme.Note, s.Comment.GetBackground())
	assert.Equal(t, theme.Ink, s.Comment.GetForeground())
	assert.Equal(t, theme.Secondary, s.Marking.GetBackground())
	assert.Equal(t, theme.Paper, s.Cursor.GetForeground())
}
