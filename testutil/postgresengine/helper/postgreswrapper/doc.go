// Package postgreswrapper builds a circulation Library on the database adapter selected by the
// ADAPTER_TYPE environment variable (pgx.pool, sql.db, or sqlx.db, default pgx.pool), so the
// same tests run against every adapter.
//
// Tests are skipped when the test database cannot be reached.
package postgreswrapper
