// Package repository defines the data access interfaces for gigsafe.
//
// The repository only ever sees normalized values: every record passes
// through the content normalizer before it is stored, so readers can rely
// on non-empty titles, images and author fields.
//
// # SQLite Implementation
//
// The sqlite subpackage stores posts and gigs using the pure-Go
// modernc.org/sqlite driver with WAL mode. It handles:
//
// - upserts keyed by record ID, preserving the original creation time
// - JSON columns for tags and social links
// - content fingerprints so unchanged re-imports can be skipped
//
// The schema is migrated on open. Tests use in-memory databases.
package repository
