package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const (
	sqlMaxOpenConnections = 20
	sqlMaxIdleConnections = 2
	sqlMaxConnLifetime    = time.Hour
	sqlMaxConnIdleTime    = time.Minute * 5
	sqlPingTimeout        = time.Second * 3
)

// PostgresSQLDBTestConfig opens a pinged *sql.DB for the test database.
func PostgresSQLDBTestConfig() (*sql.DB, error) {
	return openSQLDB(PostgresTestDSN())
}

// PostgresSQLDBReplicaConfig opens a pinged *sql.DB for the replica of the test database.
func PostgresSQLDBReplicaConfig() (*sql.DB, error) {
	return openSQLDB(PostgresReplicaDSN())
}

func openSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
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
