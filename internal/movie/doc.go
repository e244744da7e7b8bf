// Package movie defines the record and candidate types shared by every
// other topten package, plus the error taxonomy the workflows return.
//
// This package imports nothing internal. The store, the metadata gateway and
// the catalog workflows all speak in terms of these types.
//
// Key constraints:
//   - Title is the user-facing identity of a Record and is unique
//   - Ranking is always derived from Rating, never set by hand
//   - All JSON tags use snake_case
package movie
