package postgresengine

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// SQLSTATE codes the engine reacts to.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Unique indexes whose violation is a business conflict, see schema.sql.
const (
	indexActiveISBN  = "books_isbn_active_idx"
	indexActiveEmail = "members_email_active_idx"
)

// translateDriverError joins a driver error with the matching circulation sentinel.
// Serialization failures and deadlocks become ErrConcurrencyConflict, violations of the active ISBN
// and email indexes become ErrDuplicateISBN and ErrDuplicateEmail. Everything else is joined with
// fallback.
func translateDriverError(fallback error, err error) error {
	code, constraint, ok := sqlState(err)
	if !ok {
		return errors.Join(fallback, err)
	}

	switch code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return errors.Join(circulation.ErrConcurrencyConflict, err)

	case sqlStateUniqueViolation:
		switch constraint {
		case indexActiveISBN:
			return errors.Join(circulation.ErrDuplicateISBN, err)
		case indexActiveEmail:
			return errors.Join(circulation.ErrDuplicateEmail, err)
		}
	}

	return errors.Join(fallback, err)
}

// sqlState extracts SQLSTATE and constraint name from a pgx or lib/pq error.
func sqlState(err error) (code string, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	return "", "", false
}

// errorReason is a low-cardinality description of err for metric labels and span attributes.
func errorReason(err error) string {
	var circulationErr *circulation.Error
	if errors.As(err, &circulationErr) {
		return circulationErr.Error()
	}

	return circulation.KindStorageFailure.String()
}
