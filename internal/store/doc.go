// Package store provides the local operation journal using SQLite.
//
// # Overview
//
// Every mutating admin command appends an Entry: who ran it, against which
// homeserver, what it touched and whether it succeeded. Entries are never
// updated or deleted by synadminctl. Secrets such as passwords and access
// tokens are never written to an entry.
//
// # Implementations
//
//   - SQLiteStore: the on-disk journal (modernc.org/sqlite, WAL mode)
//   - MockStore: in-memory, for tests
//
// Both satisfy the Journal interface.
//
// # Listing
//
// List returns entries newest first. Filter narrows by time window, action
// and target; the limit defaults to 100 and is capped at 1000.
package store
