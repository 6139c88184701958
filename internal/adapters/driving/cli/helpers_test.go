package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/passthrough"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/pdfcpu"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/pdftest"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/textlayer"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/signature"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/services"
)

// setupTestServices installs an in-memory workspace and settings service
// and restores the previous ones when the test ends.
func setupTestServices(t *testing.T) (*services.Workspace, *services.SettingsService) {
	t.Helper()
	ws := services.NewWorkspace(
		memory.NewAnnotationStore(),
		textlayer.NewRenderer(),
		pdfcpu.NewMetadataExtractor(),
		passthrough.NewExporter(),
		signature.NewRasterizer(),
		nil,
		domain.DefaultAppSettings(),
	)
	settings := services.NewSettingsService(memory.NewConfigStore())

	prevWorkspace, prevSettings := workspaceService, settingsService
	SetWorkspaceService(ws)
	SetSettingsService(settings)
	t.Cleanup(func() {
		workspaceService, settingsService = prevWorkspace, prevSettings
		_ = ws.Close()
	})
	return ws, settings
}

// execute runs the root command with args and returns stdout and stderr
// combined. Flag values are reset afterwards so tests do not leak into
// each other.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writePDF(t *testing.T, opts pdftest.Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Build(opts), 0o600))
	return path
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
