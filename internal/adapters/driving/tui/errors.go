package tui

import "errors"

// ErrMissingWorkspace is returned when the workspace service is not provided.
var ErrMissingWorkspace = errors.New("tui: workspace service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
