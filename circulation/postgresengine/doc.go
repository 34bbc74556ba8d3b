// Package postgresengine implements the library circulation backend on PostgreSQL.
//
// A Library is created from a pgx.Pool, a sql.DB, or a sqlx.DB, optionally together with a read
// replica of the same type:
//
//	library, err := postgresengine.NewLibraryFromPGXPool(pool,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithPolicy(policy),
//	)
//
// Every mutating operation runs in one database transaction. The rows it reads for a decision are
// locked with SELECT ... FOR UPDATE, always in the order transaction, book, member. The decision
// itself is taken by the pure functions of package circulation, and the resulting state is written
// together with one circulation journal entry before the transaction commits. A rejected
// operation changes nothing.
//
// Read-only operations use the primary unless the context was marked with
// circulation.WithEventualConsistency and a replica is configured.
//
// Observability is optional and dependency-free: Logger, ContextualLogger, MetricsCollector, and
// TracingCollector from package circulation. The oteladapters package provides OpenTelemetry
// implementations.
package postgresengine
