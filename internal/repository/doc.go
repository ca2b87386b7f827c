// Package repository defines the inventory store used by the composer CLI.
//
// The store keeps service instances as the backend last reported them,
// the relations between instances, the layout metadata persisted with a
// composition and the change-sets produced by exporting one.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Inventory on modernc.org/sqlite. It
// handles:
//
// - Upserts of instances with JSON attribute payloads
// - Instance relations with cascade deletes
// - Snapshot assembly for the canvas initializer
// - Change-set history, zstd-compressed once payloads grow large
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
