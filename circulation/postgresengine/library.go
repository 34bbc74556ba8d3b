package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

const (
	logMsgBuildQueryFailed    = "failed to build sql query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgBeginTxFailed       = "failed to begin database transaction"
	logMsgCommitFailed        = "failed to commit database transaction"
	logMsgRollbackFailed      = "failed to roll back database transaction"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgJournalEntryFailed  = "failed to build circulation journal entry"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgOperationFailed     = "circulation operation failed: "
	logMsgOperationRejected   = "circulation operation rejected: "
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "circulation operation: "
	logAttrError              = "error"
	logAttrErrorKind          = "error_kind"
	logAttrQuery              = "query"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	logAttrExpectedRows       = "expected_rows"
)

// Library is the PostgreSQL implementation of the circulation backend.
// It is safe for concurrent use. All coordination between callers happens in the database.
type Library struct {
	db               adapters.DBAdapter
	logger           circulation.Logger
	contextualLogger circulation.ContextualLogger
	metricsCollector circulation.MetricsCollector
	tracingCollector circulation.TracingCollector
	clock            circulation.Clock
	policy           circulation.Policy
	isolationLevel   adapters.IsolationLevel
}

// NewLibraryFromPGXPool creates a new Library using a pgx Pool with optional configuration.
func NewLibraryFromPGXPool(db *pgxpool.Pool, options ...Option) (*Library, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewPGXAdapter(db), options)
}

// NewLibraryFromPGXPoolWithReplica creates a new Library using a primary and a replica pgx Pool.
// The replica only serves reads from contexts marked with circulation.WithEventualConsistency.
func NewLibraryFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Library, error) {
	if db == nil || replica == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewLibraryFromSQLDB creates a new Library using a sql.DB with optional configuration.
func NewLibraryFromSQLDB(db *sql.DB, options ...Option) (*Library, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLAdapter(db), options)
}

// NewLibraryFromSQLDBWithReplica creates a new Library using a primary and a replica sql.DB.
func NewLibraryFromSQLDBWithReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Library, error) {
	if db == nil || replica == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLAdapterWithReplica(db, replica), options)
}

// NewLibraryFromSQLX creates a new Library using a sqlx.DB with optional configuration.
func NewLibraryFromSQLX(db *sqlx.DB, options ...Option) (*Library, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLXAdapter(db), options)
}

// NewLibraryFromSQLXWithReplica creates a new Library using a primary and a replica sqlx.DB.
func NewLibraryFromSQLXWithReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*Library, error) {
	if db == nil || replica == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLXAdapterWithReplica(db, replica), options)
}

func newLibrary(db adapters.DBAdapter, options []Option) (*Library, error) {
	library := &Library{
		db:             db,
		clock:          circulation.SystemClock{},
		policy:         circulation.DefaultPolicy(),
		isolationLevel: adapters.ReadCommitted,
	}

	for _, option := range options {
		if err := option(library); err != nil {
			return nil, err
		}
	}

	return library, nil
}

// Policy returns the business rules the library enforces.
func (l *Library) Policy() circulation.Policy {
	return l.policy
}

// now is the normalized current time of the injected clock.
func (l *Library) now() time.Time {
	return circulation.NormalizeTime(l.clock.Now())
}

// inTx runs fn in one database transaction and commits if fn succeeds.
// Any error rolls the transaction back, so a failed operation leaves no partial state.
func (l *Library) inTx(ctx context.Context, fn func(tx adapters.DBTx) error) error {
	tx, beginErr := l.db.BeginTx(ctx, l.isolationLevel)
	if beginErr != nil {
		l.logError(ctx, logMsgBeginTxFailed, beginErr)
		return translateDriverError(circulation.ErrBeginTxFailed, beginErr)
	}

	if err := fn(tx); err != nil {
		l.rollback(ctx, tx)
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		l.logError(ctx, logMsgCommitFailed, commitErr)
		return translateDriverError(circulation.ErrCommitFailed, commitErr)
	}

	return nil
}

// rollback rolls tx back even if ctx is already canceled.
func (l *Library) rollback(ctx context.Context, tx adapters.DBTx) {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		l.logWarn(ctx, logMsgRollbackFailed, logAttrError, err.Error())
	}
}

// query executes sqlQuery and logs it with its duration.
func (l *Library) query(ctx context.Context, q adapters.DBQuerier, action, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := q.Query(ctx, sqlQuery)
	l.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		err := translateDriverError(circulation.ErrQueryFailed, queryErr)
		if circulation.KindOf(err) == circulation.KindStorageFailure {
			l.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		}

		return nil, err
	}

	return rows, nil
}

// exec executes a statement and returns the number of affected rows.
func (l *Library) exec(ctx context.Context, q adapters.DBQuerier, action, sqlQuery string) (int64, error) {
	start := time.Now()
	result, execErr := q.Exec(ctx, sqlQuery)
	l.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		err := translateDriverError(circulation.ErrExecFailed, execErr)
		if circulation.KindOf(err) == circulation.KindStorageFailure {
			l.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		}

		return 0, err
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		l.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(circulation.ErrExecFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// execExpectingOne executes a statement that must affect exactly one row.
func (l *Library) execExpectingOne(ctx context.Context, q adapters.DBQuerier, action, sqlQuery string) error {
	rowsAffected, err := l.exec(ctx, q, action, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		l.logWarn(ctx, circulation.ErrUnexpectedRowCount.Error(),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedRows, 1,
			logAttrQuery, sqlQuery)

		return circulation.ErrUnexpectedRowCount
	}

	return nil
}

// closeRows safely closes database rows and logs any errors.
func (l *Library) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// queryRows runs sqlQuery and scans every row with scan.
func queryRows[T any](
	ctx context.Context,
	l *Library,
	q adapters.DBQuerier,
	action string,
	sqlQuery string,
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {

	rows, err := l.query(ctx, q, action, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer l.closeRows(ctx, rows)

	result := make([]T, 0)
	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, scanErr
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		l.logError(ctx, logMsgDBQueryFailed, rowsErr, logAttrQuery, sqlQuery)
		return nil, translateDriverError(circulation.ErrQueryFailed, rowsErr)
	}

	return result, nil
}

// queryOne returns a pointer to the single row sqlQuery yields, or nil if it yields none.
func queryOne[T any](
	ctx context.Context,
	l *Library,
	q adapters.DBQuerier,
	action string,
	sqlQuery string,
	scan func(adapters.DBRows) (T, error),
) (*T, error) {

	items, err := queryRows(ctx, l, q, action, sqlQuery, scan)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, nil
	}

	return &items[0], nil
}
