package oteladapters_test

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
)

type emittedRecord struct {
	ctx    context.Context
	record log.Record
}

// recordingLogger is a log.Logger and log.LoggerProvider that keeps every emitted record.
type recordingLogger struct {
	embedded.Logger
	embedded.LoggerProvider

	mu      sync.Mutex
	records []emittedRecord
}

func (l *recordingLogger) Logger(string, ...log.LoggerOption) log.Logger {
	return l
}

func (l *recordingLogger) Emit(ctx context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, emittedRecord{ctx: ctx, record: record})
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func (l *recordingLogger) emitted() []emittedRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]emittedRecord(nil), l.records...)
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}
