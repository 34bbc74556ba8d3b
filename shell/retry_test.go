package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/shell"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/helper" //nolint:revive
)

func Test_RetryWithExponentialBackoff_SucceedsWithoutRetry(t *testing.T) {
	// arrange
	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	// act
	stats, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, stats.Attempts)
	assert.Zero(t, stats.TotalDelay)
}

func Test_RetryWithExponentialBackoff_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	calls := 0
	fn := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.Join(circulation.ErrConcurrencyConflict, errors.New("40001"))
		}
		return nil
	}

	// act
	stats, err := shell.RetryWithExponentialBackoff(context.Background(), fn, shell.WithBaseDelay(time.Millisecond))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, stats.Attempts)
	assert.GreaterOrEqual(t, stats.TotalDelay, 3*time.Millisecond)
}

func Test_RetryWithExponentialBackoff_FailsFastOnRejections(t *testing.T) {
	// arrange
	calls := 0
	fn := func(context.Context) error {
		calls++
		return circulation.ErrBookOutOfStock
	}

	// act
	stats, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	assert.ErrorIs(t, err, circulation.ErrBookOutOfStock)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, stats.Attempts)
}

func Test_RetryWithExponentialBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	// setup
	metrics := NewMetricsCollectorSpy(true)

	// arrange
	calls := 0
	fn := func(context.Context) error {
		calls++
		return circulation.ErrConcurrencyConflict
	}

	// act
	stats, err := shell.RetryWithExponentialBackoff(context.Background(), fn,
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
		shell.WithMetrics(metrics, "issue_book"),
	)

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, stats.Attempts)
	assert.Equal(t, 3*time.Millisecond, stats.TotalDelay)

	assert.Equal(t, 2, metrics.CountCounterRecordsForMetric(shell.RetriesMetric))
	assert.True(t, metrics.HasCounterRecordForMetric(shell.RetriesMetric).
		WithOperation("issue_book").
		WithLabel("attempt_number", "2").
		WithLabel("error_type", "concurrency_conflict").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric(shell.RetryDelayMetric).WithLabel("attempt_number", "1").Assert())
	assert.True(t, metrics.HasCounterRecordForMetric(shell.MaxRetriesReachedMetric).
		WithLabel("final_error_type", "concurrency_conflict").
		Assert())
}

func Test_RetryWithExponentialBackoff_StopsWhenTheContextEnds(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())

	// arrange
	calls := 0
	fn := func(context.Context) error {
		calls++
		cancel()
		return circulation.ErrConcurrencyConflict
	}

	// act
	_, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Hour))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	fn := func(context.Context) error { return nil }

	testCases := []struct {
		name     string
		option   shell.RetryOption
		expected error
	}{
		{name: "zero attempts", option: shell.WithMaxAttempts(0), expected: shell.ErrInvalidMaxAttempts},
		{name: "negative delay", option: shell.WithBaseDelay(-time.Second), expected: shell.ErrNegativeBaseDelay},
		{name: "jitter above one", option: shell.WithJitterFactor(1.5), expected: shell.ErrInvalidJitterFactor},
		{name: "nil metrics", option: shell.WithMetrics(nil, "issue_book"), expected: shell.ErrNilMetricsCollector},
		{name: "no operation", option: shell.WithMetrics(NewMetricsCollectorSpy(false), ""), expected: shell.ErrEmptyOperation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := shell.RetryWithExponentialBackoff(context.Background(), fn, tc.option)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
