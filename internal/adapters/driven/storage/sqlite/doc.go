// Package sqlite implements the offline mirror (driven.MirrorStore) on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each mirrored document is stored as JSON keyed by
// collection and _id; queries are evaluated in process by the query package,
// with _id lookups pushed down to the primary key.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.polydb/mirror/mirror.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
