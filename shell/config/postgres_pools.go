package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql
)

const postgresDriverName = "postgres"

// PGXPoolConfig parses dsn and applies the pool settings.
func (cfg Config) PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout

	return poolConfig, nil
}

// OpenPGXPool connects a pgx pool to dsn and pings it.
func (cfg Config) OpenPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := cfg.PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err = ping(ctx, cfg, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// OpenSQLDB opens a database/sql pool on lib/pq and pings it.
func (cfg Config) OpenSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, err
	}

	cfg.sizeSQLPool(db)

	if err = ping(ctx, cfg, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenSQLX opens a sqlx pool on lib/pq and pings it.
func (cfg Config) OpenSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, err
	}

	cfg.sizeSQLPool(db.DB)

	if err = ping(ctx, cfg, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (cfg Config) sizeSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(int(cfg.Database.MaxConns))
	db.SetMaxIdleConns(int(cfg.Database.MinConns))
	db.SetConnMaxLifetime(cfg.Database.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.Database.MaxConnIdleTime)
}

func ping(ctx context.Context, cfg Config, pingFn func(context.Context) error) error {
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}

	return pingFn(ctx)
}
