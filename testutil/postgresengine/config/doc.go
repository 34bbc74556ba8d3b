// Package config provides PostgreSQL connections for testing the circulation library.
//
// It contains factory functions for every adapter the library supports (pgx.Pool, sql.DB,
// sqlx.DB), configured against the test database. The DSN can be overridden with the
// CIRCULATION_TEST_DSN environment variable. A replica DSN is only needed for tests of the
// replica routing. When CIRCULATION_TEST_REPLICA_DSN is not set, the test database doubles as
// its own replica.
package config
