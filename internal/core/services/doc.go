// Package services implements the driving port interfaces.
// Services hold the annotation workflow: coordinate resolution, tool and
// view state, document loading and export orchestration. They reach
// storage, parsing and rendering only through driven ports.
//
// Services are pure Go with no CGO.
package services
