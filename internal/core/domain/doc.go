// Package domain defines the core entities of the annotation workspace.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Annotation: A highlight, underline, comment or signature on a page
//   - Document: The loaded PDF with its extracted metadata
//   - Session: Tool, colour, page and zoom state of the viewer
//   - Capture: An open comment or signature dialog anchored to a point
//   - Event: The user-facing outcome of a mutation
//
// Positions are stored in the unscaled page frame (PDF points, top-left
// origin), independent of the zoom they were created at.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
