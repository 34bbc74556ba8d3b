package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/library-circulation-go/circulation/oteladapters"
)

func Test_MetricsCollector_RecordDuration_InSeconds(t *testing.T) {
	// setup
	reader := sdkmetric.NewManualReader()
	collector := oteladapters.NewMetricsCollector(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))

	// act
	collector.RecordDuration("circulation_operation_duration_seconds", 150*time.Millisecond,
		map[string]string{"operation": "issue_book", "status": "success"})

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "circulation_operation_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expected := attribute.NewSet(attribute.String("operation", "issue_book"), attribute.String("status", "success"))
	assert.True(t, dataPoint.Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter_PerLabelSet(t *testing.T) {
	// setup
	reader := sdkmetric.NewManualReader()
	collector := oteladapters.NewMetricsCollector(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	ctx := context.Background()

	// act
	collector.IncrementCounter("circulation_operations_total", map[string]string{"status": "success"})
	collector.IncrementCounterContext(ctx, "circulation_operations_total", map[string]string{"status": "success"})
	collector.IncrementCounterContext(ctx, "circulation_operations_total", map[string]string{"status": "rejected"})

	// assert
	counter := findCounterMetric(t, collect(t, reader), "circulation_operations_total")
	assert.True(t, counter.IsMonotonic)

	totals := map[string]int64{}
	for _, dataPoint := range counter.DataPoints {
		status, _ := dataPoint.Attributes.Value("status")
		totals[status.AsString()] = dataPoint.Value
	}

	assert.Equal(t, map[string]int64{"success": 2, "rejected": 1}, totals)
}

func Test_MetricsCollector_RecordValue_KeepsTheLastValue(t *testing.T) {
	// setup
	reader := sdkmetric.NewManualReader()
	collector := oteladapters.NewMetricsCollector(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	labels := map[string]string{"operation": "return_book"}

	// act
	collector.RecordValue("circulation_fee_charged", 10, labels)
	collector.RecordValueContext(context.Background(), "circulation_fee_charged", 17.5, labels)

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "circulation_fee_charged")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 17.5, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	// setup
	reader := sdkmetric.NewManualReader()
	collector := oteladapters.NewMetricsCollector(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))

	// act
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("circulation_operations_total", nil)
			collector.RecordDuration("circulation_operation_duration_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	// assert
	resourceMetrics := collect(t, reader)
	counter := findCounterMetric(t, resourceMetrics, "circulation_operations_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(20), counter.DataPoints[0].Value)

	histogram := findHistogramMetric(t, resourceMetrics, "circulation_operation_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(20), histogram.DataPoints[0].Count)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Aggregation {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return nil
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	histogram, ok := findMetric(t, resourceMetrics, name).(metricdata.Histogram[float64])
	require.True(t, ok, "metric %s is not a float64 histogram", name)

	return histogram
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	counter, ok := findMetric(t, resourceMetrics, name).(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	return counter
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	gauge, ok := findMetric(t, resourceMetrics, name).(metricdata.Gauge[float64])
	require.True(t, ok, "metric %s is not a float64 gauge", name)

	return gauge
}
