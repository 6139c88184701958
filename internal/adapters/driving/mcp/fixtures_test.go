package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/passthrough"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/pdftest"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/textlayer"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/signature"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/services"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *services.Workspace) {
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

	server, err := NewServer(&Ports{Workspace: ws}, opts...)
	require.NoError(t, err)
	return server, ws
}

func writeTestPDF(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Build(pdftest.Options{Pages: pages}), 0o600))
	return path
}
