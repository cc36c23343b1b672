// Package store keeps a history of pipeline runs in a SQLite database so a
// past partition can be shown or browsed again without re-running the
// engine. It uses the pure-Go modernc.org/sqlite driver; the schema is
// embedded and migrated on Open.
package store
