// Package sqlite persists embedded corpora as single-file SQLite databases.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// Each corpus file holds two tables. Numbered DDL scripts under schema/ are
// embedded and applied in order, with PRAGMA user_version recording the last
// one applied:
//
//   - corpus_meta: tag, embedding model, dimensions, passage count, build time
//     and file format version
//   - passages: text, section and page per passage in source order, with the
//     embedding stored as a little-endian float32 blob
//
// # Atomicity
//
// Save writes to a temporary file in the destination directory and renames it
// over the target. A crash mid-build leaves the previous corpus untouched.
//
// # Data Location
//
// Corpus paths come from configuration; by default private_docs/<tag>.corpus.db.
package sqlite
