// Package labelstore persists annotation labels in SQLite as an append-only
// multimap from item id to label records.
//
// Append never updates in place; every submission, including revisions of an
// annotator's own prior label, creates a new row. Delete exists solely for
// the session undo and removes exactly one row by label id. Consensus status
// is never stored here; it is re-derived from the label set on every read.
package labelstore
