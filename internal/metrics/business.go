package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records use case calls: domain is the bounded context
// ("access"), operation a verb such as "subject_resolve" and status either
// "success" or "error".
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// operationBuckets covers sub-millisecond in-memory lookups up to slow
// remote identity calls.
var operationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

type businessMetrics struct {
	calls   metric.Int64Counter
	seconds metric.Float64Histogram
}

// NewBusinessMetrics registers <namespace>_operations_total and
// <namespace>_operation_duration_seconds.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	bm := &businessMetrics{}

	var err error
	bm.calls, err = meter.Int64Counter(namespace+"_operations_total",
		metric.WithDescription("Use case operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	bm.seconds, err = meter.Float64Histogram(namespace+"_operation_duration_seconds",
		metric.WithDescription("Use case operation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(operationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return bm, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.calls.Add(ctx, 1, operationSet(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(ctx context.Context, domain, operation string, d time.Duration, status string) {
	b.seconds.Record(ctx, d.Seconds(), operationSet(domain, operation, status))
}

func operationSet(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributeSet(attribute.NewSet(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

func NewNoOpBusinessMetrics() BusinessMetrics { return &NoOpBusinessMetrics{} }

func (*NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (*NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
