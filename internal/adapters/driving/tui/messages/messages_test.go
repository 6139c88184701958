package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewWorkspace, "workspace"},
		{ViewOpen, "open"},
		{ViewComment, "comment"},
		{ViewSignature, "signature"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.view.String())
	}
}

func TestViewWorkspace_IsZeroValue(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewWorkspace, v)
}

func TestMessages_CarryPayloads(t *testing.T) {
	err := errors.New("boom")
	ev := domain.Event{Kind: domain.EventUndo, Title: "Undo"}

	n := Notified{Event: ev, Err: err}
	assert.Equal(t, ev, n.Event)
	assert.ErrorIs(t, n.Err, err)

	p := PageLoaded{Page: 2, Size: domain.DefaultPageSize}
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 612.0, p.Size.Width)

	c := CaptureOpened{Capture: domain.Capture{Kind: domain.CaptureComment, Page: 3}}
	assert.True(t, c.Capture.IsOpen())
}
