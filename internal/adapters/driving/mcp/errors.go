// Package mcp provides an MCP (Model Context Protocol) server adapter for
// marginalia. It lets assistants load a PDF, annotate it and export the
// annotated copy through the same workspace the terminal UI uses.
package mcp

import "errors"

var (
	// ErrMissingWorkspace is returned when the workspace service is not provided.
	ErrMissingWorkspace = errors.New("mcp: workspace service is required")

	// ErrInvalidPorts is returned when ports is nil.
	ErrInvalidPorts = errors.New("mcp: ports are required")
)
