package adapters

import "context"

// IsolationLevel is the isolation level a transaction is started with.
type IsolationLevel int

const (
	ReadCommitted IsolationLevel = iota
	RepeatableRead
	Serializable
)

// DBQuerier runs interpolated SQL, either directly on a pool or inside a transaction.
type DBQuerier interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBTx is an open database transaction.
type DBTx interface {
	DBQuerier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBAdapter defines the database operations needed by the circulation engine.
// Query honours the read consistency stored in the context, Exec and BeginTx always use the primary.
type DBAdapter interface {
	DBQuerier
	BeginTx(ctx context.Context, level IsolationLevel) (DBTx, error)
}

// DBRows defines the interface for query result rows
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results
type DBResult interface {
	RowsAffected() (int64, error)
}
