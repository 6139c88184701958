// Package sqlite provides a SQLite-backed implementation of driven.AnnotationStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// Annotations live for one session only. By default the database is a private
// in-memory database held on a single connection and discarded on Close.
//
// # Thread Safety
//
// All operations are thread-safe. The single connection serialises statements.
package sqlite
