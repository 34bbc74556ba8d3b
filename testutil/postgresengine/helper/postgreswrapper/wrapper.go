package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
	"github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/config"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const (
	truncateStatement = "TRUNCATE TABLE circulation_journal, transactions, members, books RESTART IDENTITY"
	connectTimeout    = 3 * time.Second
)

// Wrapper abstracts over the different adapter types.
type Wrapper interface {
	Library() *postgresengine.Library
	Exec(ctx context.Context, statement string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	replica *pgxpool.Pool
	library *postgresengine.Library
}

func (w *PGXPoolWrapper) Library() *postgresengine.Library {
	return w.library
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.pool.Exec(ctx, statement)
	return err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
	if w.replica != nil {
		w.replica.Close()
	}
}

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db      *sql.DB
	replica *sql.DB
	library *postgresengine.Library
}

func (w *SQLDBWrapper) Library() *postgresengine.Library {
	return w.library
}

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
	if w.replica != nil {
		_ = w.replica.Close()
	}
}

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db      *sqlx.DB
	replica *sqlx.DB
	library *postgresengine.Library
}

func (w *SQLXWrapper) Library() *postgresengine.Library {
	return w.library
}

func (w *SQLXWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
	if w.replica != nil {
		_ = w.replica.Close()
	}
}

// AdapterTypeFromEnv returns the adapter type selected by ADAPTER_TYPE.
func AdapterTypeFromEnv() string {
	adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE"))
	if adapterType == "" {
		return typePGXPool
	}

	return adapterType
}

// CreateWrapperWithTestConfig connects to the test database, creates the schema, and builds a
// Library with options. The test is skipped if the database is unreachable.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	return createWrapper(t, false, options)
}

// CreateWrapperWithReplica is CreateWrapperWithTestConfig with a separate replica connection.
func CreateWrapperWithReplica(t testing.TB, options ...postgresengine.Option) Wrapper {
	return createWrapper(t, true, options)
}

func createWrapper(t testing.TB, withReplica bool, options []postgresengine.Option) Wrapper {
	t.Helper()

	var wrapper Wrapper

	switch adapterType := AdapterTypeFromEnv(); adapterType {
	case typePGXPool:
		pool := connectPGXPool(t, config.PostgresPGXPoolTestConfig)
		w := &PGXPoolWrapper{pool: pool}

		var err error
		if withReplica {
			w.replica = connectPGXPool(t, config.PostgresPGXPoolReplicaConfig)
			w.library, err = postgresengine.NewLibraryFromPGXPoolWithReplica(pool, w.replica, options...)
		} else {
			w.library, err = postgresengine.NewLibraryFromPGXPool(pool, options...)
		}
		require.NoError(t, err, "error creating library")
		wrapper = w

	case typeSQLDB:
		db := connectOrSkip(t, config.PostgresSQLDBTestConfig)
		w := &SQLDBWrapper{db: db}

		var err error
		if withReplica {
			w.replica = connectOrSkip(t, config.PostgresSQLDBReplicaConfig)
			w.library, err = postgresengine.NewLibraryFromSQLDBWithReplica(db, w.replica, options...)
		} else {
			w.library, err = postgresengine.NewLibraryFromSQLDB(db, options...)
		}
		require.NoError(t, err, "error creating library")
		wrapper = w

	case typeSQLXDB:
		db := connectOrSkip(t, config.PostgresSQLXTestConfig)
		w := &SQLXWrapper{db: db}

		var err error
		if withReplica {
			w.replica = connectOrSkip(t, config.PostgresSQLXReplicaConfig)
			w.library, err = postgresengine.NewLibraryFromSQLXWithReplica(db, w.replica, options...)
		} else {
			w.library, err = postgresengine.NewLibraryFromSQLX(db, options...)
		}
		require.NoError(t, err, "error creating library")
		wrapper = w

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.Library().CreateSchema(context.Background()), "error creating the schema")

	return wrapper
}

func connectPGXPool(t testing.TB, configure func() (*pgxpool.Config, error)) *pgxpool.Pool {
	t.Helper()

	dbConfig, err := configure()
	require.NoError(t, err, "error parsing the pgx pool config")

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	require.NoError(t, err, "error creating the pgx pool")

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		t.Skipf("test database is not reachable: %v", pingErr)
	}

	return pool
}

func connectOrSkip[DB any](t testing.TB, open func() (DB, error)) DB {
	t.Helper()

	db, err := open()
	if err != nil {
		t.Skipf("test database is not reachable: %v", err)
	}

	return db
}

// CleanUp empties all circulation tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	err := wrapper.Exec(context.Background(), truncateStatement)
	require.NoError(t, err, "error cleaning up the circulation tables")
}
