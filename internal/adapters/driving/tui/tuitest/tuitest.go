// Package tuitest wires a real workspace for TUI tests.
package tuitest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/passthrough"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/pdftest"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/textlayer"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/signature"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
	"github.com/custodia-labs/marginalia/internal/core/services"
)

// Workspace returns a workspace backed by in-memory adapters with no
// document loaded.
func Workspace(t *testing.T) *services.Workspace {
	t.Helper()
	ws := services.NewWorkspace(
		memory.NewAnnotationStore(),
		textlayer.NewRenderer(),
		nil,
		passthrough.NewExporter(),
		signature.NewRasterizer(),
		nil,
		domain.DefaultAppSettings(),
	)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// Loaded returns a workspace with a generated document of the given pages.
func Loaded(t *testing.T, pages ...string) *services.Workspace {
	t.Helper()
	ws := Workspace(t)
	_, err := ws.Load(context.Background(), driving.DocumentSource{
		Name: "contract.pdf",
		Data: pdftest.Build(pdftest.Options{Pages: pages}),
	})
	require.NoError(t, err)
	return ws
}
