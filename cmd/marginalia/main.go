// Command marginalia annotates PDF documents from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/config/file"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/passthrough"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/pdfcpu"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/textlayer"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/signature"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/watch"
	"github.com/custodia-labs/marginalia/internal/adapters/driving/cli"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
	"github.com/custodia-labs/marginalia/internal/core/services"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		// cobra has already printed command errors.
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configDir, err := file.DefaultDir()
	if err != nil {
		return report(fmt.Errorf("locate config directory: %w", err))
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return report(err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return report(fmt.Errorf("read settings: %w", err))
	}

	store, closeStore, err := newAnnotationStore(settings.Store)
	if err != nil {
		return report(err)
	}
	defer closeStore()

	var watcher driven.DocumentWatcher
	if settings.WatchEnabled {
		watcher = watch.NewWatcher(watch.DefaultDebounce)
	}

	ws := services.NewWorkspace(
		store,
		textlayer.NewRenderer(),
		pdfcpu.NewMetadataExtractor(),
		newExporter(settings.Export),
		signature.NewRasterizer(),
		watcher,
		*settings,
	)
	defer ws.Close()

	cli.SetVersion(version)
	cli.SetWorkspaceService(ws)
	cli.SetSettingsService(settingsService)
	cli.SetMCPRateLimit(settings.MCP.RatePerSecond)
	cli.SetLogPath(filepath.Join(configDir, "marginalia.log"))

	return cli.Execute(ctx)
}

// newAnnotationStore opens the configured store backend. The returned
// function releases it.
func newAnnotationStore(backend domain.StoreBackend) (driven.AnnotationStore, func(), error) {
	switch backend {
	case domain.StoreBackendSQLite:
		db, err := sqlite.NewStore("")
		if err != nil {
			return nil, nil, fmt.Errorf("open annotation store: %w", err)
		}
		return db.AnnotationStore(), func() {
			if err := db.Close(); err != nil {
				logger.Warn("close annotation store: %v", err)
			}
		}, nil
	default:
		return memory.NewAnnotationStore(), func() {}, nil
	}
}

func newExporter(mode domain.ExportMode) driven.Exporter {
	if mode == domain.ExportModePassthrough {
		return passthrough.NewExporter()
	}
	return pdfcpu.NewExporter("")
}

// report prints errors raised before cobra takes over.
func report(err error) error {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}
