package circulation

import "context"

// ReadConsistency selects which database serves a read-only operation.
type ReadConsistency int

const (
	// StrongConsistency reads from the primary and always sees the latest committed writes.
	// It is the default.
	StrongConsistency ReadConsistency = iota

	// EventualConsistency may read from a replica, if one is configured, and can lag behind.
	// Suitable for listings and reports.
	EventualConsistency
)

type contextKey string

const (
	readConsistencyKey contextKey = "circulation.read_consistency"
	correlationIDKey   contextKey = "circulation.correlation_id"
)

// WithStrongConsistency marks ctx so read operations use the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, readConsistencyKey, StrongConsistency)
}

// WithEventualConsistency marks ctx so read operations may use a replica.
//
//	ctx = circulation.WithEventualConsistency(ctx)
//	books, err := library.ListBooks(ctx)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, readConsistencyKey, EventualConsistency)
}

// GetReadConsistency returns the level stored in ctx, StrongConsistency if none.
// Mutations ignore it and always run on the primary.
func GetReadConsistency(ctx context.Context) ReadConsistency {
	if level, ok := ctx.Value(readConsistencyKey).(ReadConsistency); ok {
		return level
	}

	return StrongConsistency
}

func (c ReadConsistency) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}

// WithCorrelationID attaches a correlation id that is recorded in the metadata of every journal
// entry written on behalf of ctx.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFrom returns the correlation id attached to ctx, if any.
func CorrelationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey).(string)
	return id, ok && id != ""
}
