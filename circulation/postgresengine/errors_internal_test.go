package postgresengine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func Test_TranslateDriverError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "pgx serialization failure",
			err:      &pgconn.PgError{Code: sqlStateSerializationFailure},
			expected: circulation.ErrConcurrencyConflict,
		},
		{
			name:     "lib/pq deadlock",
			err:      &pq.Error{Code: sqlStateDeadlockDetected},
			expected: circulation.ErrConcurrencyConflict,
		},
		{
			name:     "pgx duplicate isbn",
			err:      &pgconn.PgError{Code: sqlStateUniqueViolation, ConstraintName: indexActiveISBN},
			expected: circulation.ErrDuplicateISBN,
		},
		{
			name:     "lib/pq duplicate email",
			err:      &pq.Error{Code: sqlStateUniqueViolation, Constraint: indexActiveEmail},
			expected: circulation.ErrDuplicateEmail,
		},
		{
			name:     "wrapped pgx duplicate email",
			err:      fmt.Errorf("exec: %w", &pgconn.PgError{Code: sqlStateUniqueViolation, ConstraintName: indexActiveEmail}),
			expected: circulation.ErrDuplicateEmail,
		},
		{
			name:     "other unique violation",
			err:      &pgconn.PgError{Code: sqlStateUniqueViolation, ConstraintName: "books_pkey"},
			expected: circulation.ErrExecFailed,
		},
		{
			name:     "check violation",
			err:      &pq.Error{Code: "23514", Constraint: "books_stock_bounds"},
			expected: circulation.ErrExecFailed,
		},
		{
			name:     "plain error",
			err:      errors.New("connection reset"),
			expected: circulation.ErrExecFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			translated := translateDriverError(circulation.ErrExecFailed, tc.err)

			// assert
			assert.ErrorIs(t, translated, tc.expected)
			assert.ErrorIs(t, translated, tc.err, "the driver error must stay inspectable")
		})
	}
}

func Test_TranslateDriverError_DuplicatesAreConflicts(t *testing.T) {
	// act
	translated := translateDriverError(
		circulation.ErrExecFailed,
		&pgconn.PgError{Code: sqlStateUniqueViolation, ConstraintName: indexActiveISBN},
	)

	// assert
	assert.Equal(t, circulation.KindConflict, circulation.KindOf(translated))
	assert.NotErrorIs(t, translated, circulation.ErrExecFailed)
}

func Test_ErrorReason(t *testing.T) {
	assert.Equal(t, circulation.ErrBookOutOfStock.Error(), errorReason(circulation.ErrBookOutOfStock))
	assert.Equal(t, circulation.ErrQueryFailed.Error(), errorReason(errors.Join(circulation.ErrQueryFailed, errors.New("boom"))))
	assert.Equal(t, "storage_failure", errorReason(errors.New("boom")))
}
