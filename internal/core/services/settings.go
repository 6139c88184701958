package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyAnnotateTool  = "annotate.tool"
	keyAnnotateColor = "annotate.color"
	keyViewZoom      = "view.zoom"
	keyUploadMax     = "upload.max_bytes"
	keyStoreBackend  = "store.backend"
	keyExportMode    = "export.mode"
	keyWatchEnabled  = "watch.enabled"
	keyMCPRate       = "mcp.rate_per_second"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Annotate: domain.AnnotateSettings{
			Tool:  s.getTool(defaults.Annotate.Tool),
			Color: s.getString(keyAnnotateColor, defaults.Annotate.Color),
		},
		View: domain.ViewSettings{
			Zoom: domain.ClampZoom(s.getFloat(keyViewZoom, defaults.View.Zoom)),
		},
		Upload: domain.UploadSettings{
			MaxBytes: s.getInt(keyUploadMax, defaults.Upload.MaxBytes),
		},
		Store:        s.getStoreBackend(defaults.Store),
		Export:       s.getExportMode(defaults.Export),
		WatchEnabled: s.getBool(keyWatchEnabled, defaults.WatchEnabled),
		MCP: domain.MCPSettings{
			RatePerSecond: s.getFloat(keyMCPRate, defaults.MCP.RatePerSecond),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyAnnotateTool, settings.Annotate.Tool.String()},
		{keyAnnotateColor, settings.Annotate.Color},
		{keyViewZoom, settings.View.Zoom},
		{keyUploadMax, settings.Upload.MaxBytes},
		{keyStoreBackend, settings.Store.String()},
		{keyExportMode, settings.Export.String()},
		{keyWatchEnabled, settings.WatchEnabled},
		{keyMCPRate, settings.MCP.RatePerSecond},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	var stored any
	switch key {
	case keyAnnotateTool:
		t, err := domain.ParseAnnotationType(value)
		if err != nil {
			return err
		}
		stored = t.String()
	case keyAnnotateColor:
		if err := NewController(domain.DefaultSession()).SetColor(value); err != nil {
			return err
		}
		stored = value
	case keyViewZoom:
		z, err := strconv.ParseFloat(value, 64)
		if err != nil || z < domain.MinZoom || z > domain.MaxZoom {
			return fmt.Errorf("%w: zoom must be between %.1f and %.1f", domain.ErrInvalidInput, domain.MinZoom, domain.MaxZoom)
		}
		stored = z
	case keyUploadMax:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyExportMode:
		if !domain.ExportMode(value).IsValid() {
			return fmt.Errorf("%w: unknown export mode %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyWatchEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case keyMCPRate:
		r, err := strconv.ParseFloat(value, 64)
		if err != nil || r < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = r
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the supported setting keys in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		keyAnnotateTool,
		keyAnnotateColor,
		keyViewZoom,
		keyUploadMax,
		keyStoreBackend,
		keyExportMode,
		keyWatchEnabled,
		keyMCPRate,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Config backends decode values differently (TOML yields int64 for "zoom = 2",
// the memory store keeps whatever was set), so lookups coerce by kind and
// fall back to the default on a missing or mistyped key.

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.configStore.Get(key); ok {
		if str, ok := v.(string); ok && str != "" {
			return str
		}
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int64) int64 {
	v, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int:
		n = int64(x)
	case float64:
		n = int64(x)
	}
	if n <= 0 {
		return defaultVal
	}
	return n
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	v, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if v, ok := s.configStore.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

func (s *SettingsService) getTool(defaultVal domain.AnnotationType) domain.AnnotationType {
	t := domain.AnnotationType(s.getString(keyAnnotateTool, ""))
	if t.IsValid() {
		return t
	}
	return defaultVal
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	b := domain.StoreBackend(s.getString(keyStoreBackend, ""))
	if b.IsValid() {
		return b
	}
	return defaultVal
}

func (s *SettingsService) getExportMode(defaultVal domain.ExportMode) domain.ExportMode {
	m := domain.ExportMode(s.getString(keyExportMode, ""))
	if m.IsValid() {
		return m
	}
	return defaultVal
}
