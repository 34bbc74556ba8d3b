package config

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLXTestConfig opens a pinged *sqlx.DB for the test database.
func PostgresSQLXTestConfig() (*sqlx.DB, error) {
	return openSQLX(PostgresTestDSN())
}

// PostgresSQLXReplicaConfig opens a pinged *sqlx.DB for the replica of the test database.
func PostgresSQLXReplicaConfig() (*sqlx.DB, error) {
	return openSQLX(PostgresReplicaDSN())
}

func openSQLX(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(sqlMaxOpenConnections)
	db.SetMaxIdleConns(sqlMaxIdleConnections)
	db.SetConnMaxLifetime(sqlMaxConnLifetime)
	db.SetConnMaxIdleTime(sqlMaxConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), sqlPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}
