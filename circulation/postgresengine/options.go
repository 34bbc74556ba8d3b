package postgresengine

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

// IsolationLevel is the isolation level mutating operations run with.
type IsolationLevel int

const (
	// ReadCommitted is the default. Row locks serialize the operations that touch the same rows.
	ReadCommitted IsolationLevel = iota

	// RepeatableRead runs every operation on one snapshot.
	RepeatableRead

	// Serializable adds predicate-level checks. Serialization failures surface as
	// circulation.ErrConcurrencyConflict and may be retried by the caller.
	Serializable
)

// Option defines a functional option for configuring a Library.
type Option func(*Library) error

// WithLogger sets the logger for the Library.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: completed and rejected operations with durations (production-safe)
// Warn level: non-critical issues like rollback or cleanup failures
// Error level: storage failures that cause operation failures.
func WithLogger(logger circulation.Logger) Option {
	return func(l *Library) error {
		l.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Library.
// It receives the same messages as the Logger, with the context of the operation,
// so trace and span ids can be correlated when tracing is enabled.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(l *Library) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Library.
// It receives operation durations, outcome counters, rule violations, database errors,
// concurrency conflicts, and charged fees.
func WithMetrics(collector circulation.MetricsCollector) Option {
	return func(l *Library) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Library.
// Every public operation becomes one span named "circulation.<operation>".
func WithTracing(collector circulation.TracingCollector) Option {
	return func(l *Library) error {
		l.tracingCollector = collector
		return nil
	}
}

// WithClock replaces the system clock, which makes issue dates and fees deterministic in tests.
func WithClock(clock circulation.Clock) Option {
	return func(l *Library) error {
		if clock == nil {
			return circulation.ErrInvalidPolicy
		}

		l.clock = clock

		return nil
	}
}

// WithPolicy sets debt limit, fee schedule, and the credit and stock clamping rules.
func WithPolicy(policy circulation.Policy) Option {
	return func(l *Library) error {
		if err := policy.Validate(); err != nil {
			return err
		}

		l.policy = policy

		return nil
	}
}

// WithIsolationLevel sets the isolation level of mutating operations.
func WithIsolationLevel(level IsolationLevel) Option {
	return func(l *Library) error {
		switch level {
		case ReadCommitted:
			l.isolationLevel = adapters.ReadCommitted
		case RepeatableRead:
			l.isolationLevel = adapters.RepeatableRead
		case Serializable:
			l.isolationLevel = adapters.Serializable
		default:
			return circulation.ErrInvalidIsolation
		}

		return nil
	}
}
