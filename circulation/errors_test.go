package circulation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func Test_KindOf(t *testing.T) {
	driverErr := errors.New("connection reset by peer")

	tests := []struct {
		name     string
		err      error
		expected circulation.ErrorKind
	}{
		{name: "nil", err: nil, expected: circulation.KindNone},
		{name: "not found sentinel", err: circulation.ErrMemberNotFound, expected: circulation.KindNotFound},
		{name: "conflict sentinel", err: circulation.ErrAlreadyReturned, expected: circulation.KindConflict},
		{name: "invalid input sentinel", err: circulation.ErrInvalidAmount, expected: circulation.KindInvalidInput},
		{name: "joined storage error", err: errors.Join(circulation.ErrQueryFailed, driverErr), expected: circulation.KindStorageFailure},
		{name: "wrapped sentinel", err: fmt.Errorf("issuing: %w", circulation.ErrDebtLimitExceeded), expected: circulation.KindConflict},
		{name: "foreign error", err: context.Canceled, expected: circulation.KindStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, circulation.KindOf(tt.err))
		})
	}
}

func Test_ErrBookOutOfStock_IsBookUnavailable(t *testing.T) {
	assert.ErrorIs(t, circulation.ErrBookOutOfStock, circulation.ErrBookUnavailable)
	assert.NotErrorIs(t, circulation.ErrBookNotFound, circulation.ErrBookUnavailable)
	assert.NotErrorIs(t, circulation.ErrBookUnavailable, circulation.ErrBookOutOfStock)
}

func Test_JoinedStorageError_KeepsDriverError(t *testing.T) {
	driverErr := errors.New("serialization failure")
	err := errors.Join(circulation.ErrConcurrencyConflict, driverErr)

	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.ErrorIs(t, err, driverErr)
}

func Test_ErrorKind_String(t *testing.T) {
	assert.Equal(t, "none", circulation.KindNone.String())
	assert.Equal(t, "not_found", circulation.KindNotFound.String())
	assert.Equal(t, "conflict", circulation.KindConflict.String())
	assert.Equal(t, "invalid_input", circulation.KindInvalidInput.String())
	assert.Equal(t, "storage_failure", circulation.KindStorageFailure.String())
}
