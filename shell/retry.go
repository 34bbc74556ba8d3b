package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

// Retry metric names.
const (
	RetriesMetric           = "circulation_retries_total"
	RetryDelayMetric        = "circulation_retry_delay_seconds"
	MaxRetriesReachedMetric = "circulation_max_retries_reached_total"
)

const (
	labelOperation      = "operation"
	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperation is returned when an empty operation name is provided to WithMetrics.
	ErrEmptyOperation = errors.New("operation must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a library call.
type RetryableFunc func(ctx context.Context) error

// RetryStats describes how a retried call went.
type RetryStats struct {
	Attempts   int
	TotalDelay time.Duration
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector circulation.MetricsCollector
	operation        string
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails with an error other than
// circulation.ErrConcurrencyConflict, or runs out of attempts.
//
// Default schedule: 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms, each with up to 30% jitter.
//
// Every other error fails fast, rejections and timeouts included. The library itself never
// retries, so this is the only place where a conflicting operation runs again.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryStats, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryStats{}, err
		}
	}

	var (
		stats   RetryStats
		lastErr error
	)

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.backoff(attempt)
			config.recordDelay(ctx, attempt, delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return stats, ctx.Err()
			}

			stats.TotalDelay += delay
		}

		stats.Attempts++

		lastErr = fn(ctx)
		if lastErr == nil {
			return stats, nil
		}

		if !IsRetryable(lastErr) {
			return stats, lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.recordRetry(ctx, attempt+1, lastErr)
		}
	}

	config.recordMaxRetriesReached(ctx, lastErr)

	return stats, lastErr
}

// IsRetryable reports whether err is worth another attempt. Only concurrency conflicts are.
func IsRetryable(err error) bool {
	return errors.Is(err, circulation.ErrConcurrencyConflict)
}

// backoff is baseDelay * 2^(attempt-1) plus jitter.
func (c *retryConfig) backoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<(attempt-1))
	jitter := rand.Float64() * float64(delay) * c.jitterFactor //nolint:gosec // math/rand is sufficient for jitter

	return delay + time.Duration(jitter)
}

func (c *retryConfig) recordDelay(ctx context.Context, attempt int, delay time.Duration) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: c.operation, labelAttemptNumber: strconv.Itoa(attempt)}

	if contextual, ok := c.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, RetryDelayMetric, delay, labels)
	} else {
		c.metricsCollector.RecordDuration(RetryDelayMetric, delay, labels)
	}
}

func (c *retryConfig) recordRetry(ctx context.Context, attemptNumber int, err error) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     c.operation,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		labelErrorType:     errorType(err),
	}

	if contextual, ok := c.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, RetriesMetric, labels)
	} else {
		c.metricsCollector.IncrementCounter(RetriesMetric, labels)
	}
}

func (c *retryConfig) recordMaxRetriesReached(ctx context.Context, err error) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: c.operation, labelFinalErrorType: errorType(err)}

	if contextual, ok := c.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, MaxRetriesReachedMetric, labels)
	} else {
		c.metricsCollector.IncrementCounter(MaxRetriesReachedMetric, labels)
	}
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the total number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the second attempt. Later delays double.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of each delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithMetrics records retries, delays, and exhaustion, labeled with operation.
func WithMetrics(collector circulation.MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
