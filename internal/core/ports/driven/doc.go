// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - AnnotationStore: Session annotation records (memory or in-memory SQLite)
//   - Renderer: Page count, page sizes and text layer of a document
//   - MetadataExtractor: Best-effort document metadata
//   - Exporter: Produces the annotated copy
//   - SignatureRasterizer: Encodes signature input as an image
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentWatcher: Reloads a document changed on disk. Without it, no reload happens.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
