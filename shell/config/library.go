package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
)

// LibraryOptions returns the engine options derived from the configuration: the policy and the
// isolation level. Callers append their observability options.
func (cfg Config) LibraryOptions() ([]postgresengine.Option, error) {
	policy, err := cfg.CirculationPolicy()
	if err != nil {
		return nil, err
	}

	isolation, err := cfg.IsolationLevel()
	if err != nil {
		return nil, err
	}

	return []postgresengine.Option{
		postgresengine.WithPolicy(policy),
		postgresengine.WithIsolationLevel(isolation),
	}, nil
}

// OpenLibrary connects to the primary, and to the replica when one is configured, with the
// configured adapter. The returned function closes every pool it opened.
func (cfg Config) OpenLibrary(ctx context.Context, options ...postgresengine.Option) (*postgresengine.Library, func(), error) {
	baseOptions, err := cfg.LibraryOptions()
	if err != nil {
		return nil, nil, err
	}

	options = append(baseOptions, options...)

	switch cfg.Database.Adapter {
	case AdapterPGXPool:
		return openWithPools(ctx, cfg, cfg.OpenPGXPool, func(pool *pgxpool.Pool) { pool.Close() },
			postgresengine.NewLibraryFromPGXPool, postgresengine.NewLibraryFromPGXPoolWithReplica, options)

	case AdapterSQLDB:
		return openWithPools(ctx, cfg, cfg.OpenSQLDB, func(db *sql.DB) { _ = db.Close() },
			postgresengine.NewLibraryFromSQLDB, postgresengine.NewLibraryFromSQLDBWithReplica, options)

	case AdapterSQLX:
		return openWithPools(ctx, cfg, cfg.OpenSQLX, func(db *sqlx.DB) { _ = db.Close() },
			postgresengine.NewLibraryFromSQLX, postgresengine.NewLibraryFromSQLXWithReplica, options)

	default:
		return nil, nil, fmt.Errorf("%w: unsupported adapter %q", ErrInvalidConfig, cfg.Database.Adapter)
	}
}

// openWithPools opens the primary pool, the optional replica pool, and builds the library.
func openWithPools[P any](
	ctx context.Context,
	cfg Config,
	open func(context.Context, string) (*P, error),
	closePool func(*P),
	newLibrary func(*P, ...postgresengine.Option) (*postgresengine.Library, error),
	newLibraryWithReplica func(*P, *P, ...postgresengine.Option) (*postgresengine.Library, error),
	options []postgresengine.Option,
) (*postgresengine.Library, func(), error) {

	primary, err := open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect primary: %w", err)
	}

	if cfg.Database.ReplicaDSN == "" {
		library, libErr := newLibrary(primary, options...)
		if libErr != nil {
			closePool(primary)
			return nil, nil, libErr
		}

		return library, func() { closePool(primary) }, nil
	}

	replica, err := open(ctx, cfg.Database.ReplicaDSN)
	if err != nil {
		closePool(primary)
		return nil, nil, fmt.Errorf("connect replica: %w", err)
	}

	closeAll := func() {
		closePool(replica)
		closePool(primary)
	}

	library, err := newLibraryWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return library, closeAll, nil
}
