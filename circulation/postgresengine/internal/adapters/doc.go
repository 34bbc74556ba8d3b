// Package adapters provide database adapter implementations for the PostgreSQL circulation engine.
//
// Three PostgreSQL client libraries are supported: pgx.Pool, sql.DB, and sqlx.DB. Every adapter
// exposes the same DBAdapter interface, including transactions with a chosen isolation level and
// optional routing of reads to a replica, so the engine never sees which library is underneath.
package adapters
