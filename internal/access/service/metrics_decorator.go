package service

import (
	"context"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/metrics"
)

// decisionEngineWithMetrics counts every decision the wrapped engine returns.
type decisionEngineWithMetrics struct {
	next    DecisionEngine
	metrics metrics.DecisionMetrics
}

// NewDecisionEngineWithMetrics wraps a DecisionEngine with decision counting.
// Filter is not counted; it answers visibility, not access.
func NewDecisionEngineWithMetrics(engine DecisionEngine, m metrics.DecisionMetrics) DecisionEngine {
	return &decisionEngineWithMetrics{next: engine, metrics: m}
}

func (d *decisionEngineWithMetrics) Decide(subject *domain.Subject, resource domain.Resource) domain.AccessDecision {
	decision := d.next.Decide(subject, resource)
	d.record(context.Background(), resource, decision)
	return decision
}

func (d *decisionEngineWithMetrics) Filter(subject *domain.Subject, resources []domain.Resource) []domain.Resource {
	return d.next.Filter(subject, resources)
}

func (d *decisionEngineWithMetrics) DecideAll(
	ctx context.Context,
	subject *domain.Subject,
	resources []domain.Resource,
) ([]domain.AccessDecision, error) {
	decisions, err := d.next.DecideAll(ctx, subject, resources)
	if err != nil {
		return nil, err
	}
	for i, decision := range decisions {
		d.record(ctx, resources[i], decision)
	}
	return decisions, nil
}

func (d *decisionEngineWithMetrics) record(ctx context.Context, resource domain.Resource, decision domain.AccessDecision) {
	d.metrics.RecordDecision(ctx, string(resource.Type), string(decision.Reason), decision.Allow)
}
