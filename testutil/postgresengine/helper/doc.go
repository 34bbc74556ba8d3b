// Package helper provides spies, fixtures, and a controllable clock for testing the PostgreSQL
// circulation library.
//
// The spies capture what the library sends to its Logger, ContextualLogger, MetricsCollector, and
// TracingCollector, and offer fluent matchers to assert on it.
package helper
