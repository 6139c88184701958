package domain

const unknownDescription = "Unknown"

// StoreBackend selects the annotation store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendMemory keeps annotations in a slice.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendSQLite keeps annotations in an in-memory SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendMemory:
		return "Memory (slice, insertion order)"
	case StoreBackendSQLite:
		return "SQLite (in-memory database, session scoped)"
	default:
		return unknownDescription
	}
}

// ExportMode selects what the exporter writes.
type ExportMode string

// Available export modes.
const (
	// ExportModePassthrough writes the original bytes unchanged.
	ExportModePassthrough ExportMode = "passthrough"

	// ExportModeStamp flattens annotations into the page content.
	ExportModeStamp ExportMode = "stamp"
)

// IsValid returns true if the export mode is recognised.
func (m ExportMode) IsValid() bool {
	switch m {
	case ExportModePassthrough, ExportModeStamp:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ExportMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m ExportMode) Description() string {
	switch m {
	case ExportModePassthrough:
		return "Passthrough (original bytes)"
	case ExportModeStamp:
		return "Stamp (annotations flattened into pages)"
	default:
		return unknownDescription
	}
}

// AnnotateSettings holds the tool state restored at startup.
type AnnotateSettings struct {
	// Tool is the initially selected tool.
	Tool AnnotationType

	// Color is the initial highlight and underline colour.
	Color string
}

// ViewSettings holds viewer defaults.
type ViewSettings struct {
	// Zoom is the initial zoom factor.
	Zoom float64
}

// UploadSettings holds input validation limits.
type UploadSettings struct {
	// MaxBytes is the largest accepted document.
	MaxBytes int64
}

// MCPSettings holds MCP server configuration.
type MCPSettings struct {
	// RatePerSecond bounds tool calls per second. Zero disables throttling.
	RatePerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Annotate AnnotateSettings

	View ViewSettings

	Upload UploadSettings

	// Store selects the annotation store backend.
	Store StoreBackend

	// Export selects the export mode.
	Export ExportMode

	// WatchEnabled reloads the document when its file changes on disk.
	WatchEnabled bool

	MCP MCPSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Annotate: AnnotateSettings{
			Tool:  AnnotationHighlight,
			Color: DefaultColor,
		},
		View: ViewSettings{
			Zoom: DefaultZoom,
		},
		Upload: UploadSettings{
			MaxBytes: DefaultMaxUploadBytes,
		},
		Store:        StoreBackendMemory,
		Export:       ExportModeStamp,
		WatchEnabled: true,
		MCP: MCPSettings{
			RatePerSecond: 5,
		},
	}
}

// AllStoreBackends returns all available store backends.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{StoreBackendMemory, StoreBackendSQLite}
}

// AllExportModes returns all available export modes.
func AllExportModes() []ExportMode {
	return []ExportMode{ExportModeStamp, ExportModePassthrough}
}
