package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Metric names.
const (
	metricOperationDuration    = "circulation_operation_duration_seconds"
	metricOperationsTotal      = "circulation_operations_total"
	metricRuleViolations       = "circulation_rule_violations_total"
	metricDatabaseErrors       = "circulation_database_errors_total"
	metricConcurrencyConflicts = "circulation_concurrency_conflicts_total"
	metricFeeCharged           = "circulation_fee_charged"
)

// Operation names, used as span suffix, metric label, and log message suffix.
const (
	operationCreateSchema     = "create_schema"
	operationCreateBook       = "create_book"
	operationUpdateBook       = "update_book"
	operationDeleteBook       = "delete_book"
	operationGetBook          = "get_book"
	operationListBooks        = "list_books"
	operationSearchBooks      = "search_books"
	operationCreateMember     = "create_member"
	operationUpdateMember     = "update_member"
	operationDeleteMember     = "delete_member"
	operationGetMember        = "get_member"
	operationListMembers      = "list_members"
	operationMemberDebt       = "member_debt"
	operationIssueBook        = "issue_book"
	operationReturnBook       = "return_book"
	operationRecordPayment    = "record_payment"
	operationGetTransaction   = "get_transaction"
	operationListTransactions = "list_transactions"
	operationQueryJournal     = "query_journal"
)

// Status values for metrics and spans.
const (
	statusSuccess  = "success"
	statusRejected = "rejected"
	statusConflict = "conflict"
	statusError    = "error"
)

// Span and metric attribute keys. They double as log attribute keys.
const (
	spanNamePrefix          = "circulation."
	spanAttrOperation       = "operation"
	spanAttrStatus          = "status"
	spanAttrErrorKind       = "error_kind"
	spanAttrErrorType       = "error_type"
	spanAttrReason          = "reason"
	spanAttrDurationMS      = "duration_ms"
	spanAttrBookID          = "book_id"
	spanAttrMemberID        = "member_id"
	spanAttrTransactionID   = "transaction_id"
	spanAttrPaymentID       = "payment_id"
	spanAttrFee             = "fee"
	spanAttrDebtAfter       = "debt_after"
	spanAttrResultCount     = "result_count"
	spanAttrReadConsistency = "read_consistency"
	spanAttrEntryType       = "entry_type"
)

// === Logging ===
// Every message goes to the Logger and to the ContextualLogger, whichever are configured.

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (l *Library) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, l.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if l.logger != nil {
		l.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (l *Library) logOperation(ctx context.Context, message string, args ...any) {
	if l.logger != nil {
		l.logger.Info(message, args...)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, message, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (l *Library) logWarn(ctx context.Context, message string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(message, args...)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level.
func (l *Library) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if l.logger != nil {
		l.logger.Error(message, allArgs...)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (l *Library) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Metrics ===

// incrementCounterContext increments a counter with context if the collector supports it.
func (l *Library) incrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if l.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := l.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
	} else {
		l.metricsCollector.IncrementCounter(metricName, labels)
	}
}

// recordDurationMetricsContext records a duration with context if the collector supports it.
func (l *Library) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {
	if l.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := l.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		l.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordValueMetricsContext records a value with context if the collector supports it.
func (l *Library) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	labels map[string]string,
) {
	if l.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := l.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		l.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// === Operation Observer ===
// An operationObserver covers one public operation: its span, its metrics, and its outcome log.

type operationObserver struct {
	l         *Library
	ctx       context.Context
	operation string
	span      circulation.SpanContext
	start     time.Time
}

// startOperation starts the span of an operation and returns the context to run it with.
func (l *Library) startOperation(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, *operationObserver) {

	spanAttrs := map[string]string{spanAttrOperation: operation}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	var span circulation.SpanContext
	if l.tracingCollector != nil {
		ctx, span = l.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return ctx, &operationObserver{
		l:         l,
		ctx:       ctx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}
}

// finish records the outcome of the operation. resultAttrs annotate the span and the log record.
func (o *operationObserver) finish(err error, resultAttrs map[string]string) {
	duration := time.Since(o.start)
	status := statusFor(err)

	o.recordMetrics(err, status, duration)
	o.log(err, status, duration, resultAttrs)
	o.finishSpan(err, status, duration, resultAttrs)
}

// statusFor classifies an operation outcome.
func statusFor(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		return statusConflict
	case circulation.KindOf(err) == circulation.KindStorageFailure:
		return statusError
	default:
		return statusRejected
	}
}

func (o *operationObserver) recordMetrics(err error, status string, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: o.operation, spanAttrStatus: status}

	o.l.recordDurationMetricsContext(o.ctx, metricOperationDuration, duration, labels)
	o.l.incrementCounterContext(o.ctx, metricOperationsTotal, labels)

	switch status {
	case statusRejected:
		o.l.incrementCounterContext(o.ctx, metricRuleViolations, map[string]string{
			spanAttrOperation: o.operation,
			spanAttrErrorKind: circulation.KindOf(err).String(),
			spanAttrReason:    errorReason(err),
		})

	case statusConflict:
		o.l.incrementCounterContext(o.ctx, metricConcurrencyConflicts, map[string]string{
			spanAttrOperation: o.operation,
			"conflict_type":   "concurrency",
		})

	case statusError:
		o.l.incrementCounterContext(o.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			spanAttrStatus:    statusError,
			spanAttrErrorType: errorReason(err),
		})
	}
}

func (o *operationObserver) log(err error, status string, duration time.Duration, resultAttrs map[string]string) {
	args := []any{logAttrDurationMS, o.l.toMilliseconds(duration)}
	for key, value := range resultAttrs {
		args = append(args, key, value)
	}

	switch status {
	case statusSuccess:
		o.l.logOperation(o.ctx, logMsgOperation+o.operation, args...)

	case statusRejected:
		args = append(args, logAttrError, err.Error(), logAttrErrorKind, circulation.KindOf(err).String())
		o.l.logOperation(o.ctx, logMsgOperationRejected+o.operation, args...)

	case statusConflict:
		args = append(args, logAttrError, err.Error(), spanAttrOperation, o.operation)
		o.l.logOperation(o.ctx, logMsgConcurrencyConflict, args...)

	default:
		o.l.logError(o.ctx, logMsgOperationFailed+o.operation, err, args...)
	}
}

func (o *operationObserver) finishSpan(err error, status string, duration time.Duration, resultAttrs map[string]string) {
	if o.l.tracingCollector == nil || o.span == nil {
		return
	}

	attrs := map[string]string{spanAttrDurationMS: fmt.Sprintf("%.2f", o.l.toMilliseconds(duration))}
	for key, value := range resultAttrs {
		attrs[key] = value
	}

	if err != nil {
		attrs[spanAttrErrorKind] = circulation.KindOf(err).String()
		attrs[spanAttrErrorType] = errorReason(err)
	}

	o.l.tracingCollector.FinishSpan(o.span, status, attrs)
}

// recordFee records the fee charged by a return.
func (l *Library) recordFee(ctx context.Context, fee float64) {
	l.recordValueMetricsContext(ctx, metricFeeCharged, fee, map[string]string{
		spanAttrOperation: operationReturnBook,
		spanAttrStatus:    statusSuccess,
	})
}
