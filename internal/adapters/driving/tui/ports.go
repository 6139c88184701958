// Package tui provides an interactive terminal user interface for marginalia.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workspace holds the document, its annotations and the tool state.
	Workspace driving.WorkspaceService

	// Settings supplies the export directory default and persists the last
	// used tool and colour. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(workspace driving.WorkspaceService, settings driving.SettingsService) *Ports {
	return &Ports{
		Workspace: workspace,
		Settings:  settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Workspace == nil {
		return ErrMissingWorkspace
	}
	return nil
}
