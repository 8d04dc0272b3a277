package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DecisionMetrics counts ALLOW/DENY outcomes of the decision engine.
type DecisionMetrics interface {
	// RecordDecision counts one decision. resourceType and reason are the
	// string forms of the domain values, so cardinality stays bounded.
	RecordDecision(ctx context.Context, resourceType, reason string, allow bool)
}

type decisionMetrics struct {
	decisionCounter metric.Int64Counter
}

// NewDecisionMetrics registers <namespace>_access_decisions_total.
func NewDecisionMetrics(meterProvider metric.MeterProvider, namespace string) (DecisionMetrics, error) {
	meter := meterProvider.Meter(namespace)

	decisionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_access_decisions_total", namespace),
		metric.WithDescription("Total number of access decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision counter: %w", err)
	}

	return &decisionMetrics{decisionCounter: decisionCounter}, nil
}

func (d *decisionMetrics) RecordDecision(ctx context.Context, resourceType, reason string, allow bool) {
	outcome := "deny"
	if allow {
		outcome = "allow"
	}

	d.decisionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("resource_type", resourceType),
			attribute.String("outcome", outcome),
			attribute.String("reason", reason),
		),
	)
}

// NoOpDecisionMetrics discards every decision.
type NoOpDecisionMetrics struct{}

// NewNoOpDecisionMetrics creates a no-op DecisionMetrics implementation.
func NewNoOpDecisionMetrics() DecisionMetrics {
	return &NoOpDecisionMetrics{}
}

func (n *NoOpDecisionMetrics) RecordDecision(ctx context.Context, resourceType, reason string, allow bool) {}
