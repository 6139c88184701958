package signature

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/tuitest"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/services"
)

var (
	save  = tea.KeyMsg{Type: tea.KeyCtrlS}
	space = tea.KeyMsg{Type: tea.KeySpace}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	right = tea.KeyMsg{Type: tea.KeyRight}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func openDialog(t *testing.T) (*View, *services.Workspace) {
	t.Helper()
	ws := tuitest.Loaded(t)
	_, err := ws.SetTool(domain.AnnotationSignature)
	require.NoError(t, err)
	capture, err := ws.Click(domain.Point{X: 300, Y: 600}, domain.Point{})
	require.NoError(t, err)
	require.NotNil(t, capture)

	v := NewView(nil, nil, ws)
	v.Open(*capture)
	return v, ws
}

func send(t *testing.T, v *View, msg tea.KeyMsg) tea.Msg {
	t.Helper()
	_, cmd := v.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestView_OpensInDrawMode(t *testing.T) {
	v, _ := openDialog(t)

	assert.Equal(t, domain.SignatureDraw, v.Mode())
	assert.False(t, v.PenDown())
	assert.True(t, v.Input().IsEmpty())
	assert.Contains(t, v.View(), "Add Signature")
	assert.Contains(t, v.View(), "Page 1 at (300, 600)")
}

func TestView_DrawStrokes(t *testing.T) {
	v, _ := openDialog(t)

	send(t, v, space)
	require.True(t, v.PenDown())
	send(t, v, right)
	send(t, v, right)
	send(t, v, down)
	send(t, v, space)
	send(t, v, right)

	in := v.Input()
	require.Len(t, in.Strokes, 1)
	assert.Len(t, in.Strokes[0], 4)
	assert.Equal(t, domain.Point{X: 30.5, Y: 10.5}, in.Strokes[0][0])
	assert.Equal(t, domain.Point{X: 32.5, Y: 11.5}, in.Strokes[0][3])
	assert.Equal(t, float64(PadWidth), in.PadWidth)
	assert.Equal(t, float64(PadHeight), in.PadHeight)
	assert.Contains(t, v.View(), "•")
}

func TestView_CursorStaysOnPad(t *testing.T) {
	v, _ := openDialog(t)
	send(t, v, space)

	for i := 0; i < PadWidth; i++ {
		send(t, v, right)
	}

	in := v.Input()
	last := in.Strokes[0][len(in.Strokes[0])-1]
	assert.Equal(t, PadWidth-0.5, last.X)
}

func TestView_Clear(t *testing.T) {
	v, _ := openDialog(t)
	send(t, v, space)
	send(t, v, right)

	send(t, v, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.True(t, v.Input().IsEmpty())
	assert.False(t, v.PenDown())
}

func TestView_SaveDrawn(t *testing.T) {
	v, ws := openDialog(t)
	send(t, v, space)
	send(t, v, right)
	send(t, v, right)

	msg := send(t, v, save)

	closedMsg, ok := msg.(messages.CaptureClosed)
	require.True(t, ok)
	assert.Equal(t, domain.EventAnnotationAdded, closedMsg.Event.Kind)
	assert.Nil(t, ws.Capture())

	annotations, err := ws.AllAnnotations(context.Background())
	require.NoError(t, err)
	require.Len(t, annotations, 1)
	assert.Equal(t, domain.AnnotationSignature, annotations[0].Type)
	assert.True(t, strings.HasPrefix(annotations[0].Data, "data:image/png;base64,"))
	assert.Equal(t, domain.Point{X: 300, Y: 600}, annotations[0].Position)
}

func TestView_EmptyDrawKeepsDialogOpen(t *testing.T) {
	v, ws := openDialog(t)

	msg := send(t, v, save)

	assert.Nil(t, msg)
	assert.ErrorIs(t, v.Err(), domain.ErrEmptySignature)
	assert.Contains(t, v.View(), "Please draw your signature before saving")
	assert.NotNil(t, ws.Capture())
}

func TestView_TypeMode(t *testing.T) {
	v, ws := openDialog(t)

	send(t, v, tab)
	require.Equal(t, domain.SignatureType, v.Mode())

	send(t, v, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Ana Ruiz")})
	send(t, v, down)

	in := v.Input()
	assert.Equal(t, "Ana Ruiz", in.Name)
	assert.Equal(t, domain.FontHandwritten, in.Font)
	assert.Contains(t, v.View(), "Handwritten")

	msg := send(t, v, tea.KeyMsg{Type: tea.KeyEnter})

	_, ok := msg.(messages.CaptureClosed)
	require.True(t, ok)
	annotations, err := ws.AllAnnotations(context.Background())
	require.NoError(t, err)
	assert.Len(t, annotations, 1)
}

func TestView_FontCyclesBothWays(t *testing.T) {
	v, _ := openDialog(t)
	send(t, v, tab)

	send(t, v, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, domain.FontStandard, v.Input().Font)

	send(t, v, down)
	assert.Equal(t, domain.FontSignature, v.Input().Font)
}

func TestView_EmptyNameKeepsDialogOpen(t *testing.T) {
	v, ws := openDialog(t)
	send(t, v, tab)
	send(t, v, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("  ")})

	msg := send(t, v, save)

	assert.Nil(t, msg)
	assert.Contains(t, v.View(), "Please type your name before saving")
	assert.NotNil(t, ws.Capture())
}

func TestView_SwitchModeKeepsStrokes(t *testing.T) {
	v, _ := openDialog(t)
	send(t, v, space)
	send(t, v, right)

	send(t, v, tab)
	send(t, v, tab)

	assert.Equal(t, domain.SignatureDraw, v.Mode())
	assert.False(t, v.PenDown())
	assert.False(t, v.Input().IsEmpty())
}

func TestView_Escape(t *testing.T) {
	v, ws := openDialog(t)
	send(t, v, space)

	msg := send(t, v, tea.KeyMsg{Type: tea.KeyEsc})

	closedMsg, ok := msg.(messages.CaptureClosed)
	require.True(t, ok)
	assert.False(t, closedMsg.Event.Changed())
	assert.Nil(t, ws.Capture())
}
