// Package oteladapters connects the observability interfaces of the circulation package to
// OpenTelemetry.
//
// Wire them into a library like this:
//
//	library, err := postgresengine.NewLibraryFromPGXPool(pool,
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("circulation")),
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("circulation"))),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("circulation"))),
//	)
//
// The adapters take their providers from the caller. They never install global providers.
package oteladapters
