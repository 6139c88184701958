package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoom, ClampZoom(0.1))
	assert.Equal(t, MaxZoom, ClampZoom(5))
	assert.Equal(t, 1.3, ClampZoom(1.3))
	assert.Equal(t, DefaultZoom, ClampZoom(math.NaN()))
	assert.Equal(t, MaxZoom, ClampZoom(math.Inf(1)))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 5, ClampPage(9, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
	assert.Equal(t, 1, ClampPage(3, 0))
}

func TestRoundZoom(t *testing.T) {
	assert.Equal(t, 1.3, RoundZoom(1.2+0.1))
	assert.Equal(t, 0.7, RoundZoom(0.8-0.1))
	assert.Equal(t, 130, ZoomPercent(1.2999999))
}

func TestPalette(t *testing.T) {
	p := Palette()

	assert.Len(t, p, 8)
	assert.Equal(t, DefaultColor, p[0].Value)
	assert.Equal(t, "Yellow", ColorLabel(DefaultColor))
	assert.Equal(t, "Blue Grey", ColorLabel("#607D8B"))
	assert.Equal(t, "#ABCDEF", ColorLabel("#ABCDEF"))
}

func TestDefaultSession(t *testing.T) {
	s := DefaultSession()

	assert.Equal(t, AnnotationHighlight, s.Tool)
	assert.Equal(t, DefaultColor, s.Color)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, DefaultZoom, s.Zoom)
	assert.False(t, s.Fullscreen)
}
