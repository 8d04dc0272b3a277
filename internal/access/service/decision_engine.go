package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/roleguard/internal/access/domain"
)

// decisionEngine implements DecisionEngine over role allow-lists.
type decisionEngine struct {
	parallelism int
}

// NewDecisionEngine creates a DecisionEngine. DecideAll runs at most
// GOMAXPROCS evaluations at a time.
func NewDecisionEngine() DecisionEngine {
	return &decisionEngine{parallelism: runtime.GOMAXPROCS(0)}
}

// Decide implements DecisionEngine.
//
// Evaluation order:
//  1. anonymous subject → DENY unauthenticated
//  2. inactive subject → DENY account_disabled
//  3. role not in the allow-list → DENY role_not_permitted
//  4. otherwise → ALLOW role_matched
//
// No role bypasses the allow-list, admin included.
func (e *decisionEngine) Decide(subject *domain.Subject, resource domain.Resource) domain.AccessDecision {
	if domain.IsAnonymous(subject) {
		return domain.Denied(domain.ReasonUnauthenticated)
	}

	if !subject.IsActive {
		return domain.Denied(domain.ReasonAccountDisabled)
	}

	if !resource.RequiredRoles.Contains(subject.Role) {
		return domain.Denied(domain.ReasonRoleNotPermitted)
	}

	return domain.Allowed(domain.ReasonRoleMatched)
}

// Filter implements DecisionEngine.
func (e *decisionEngine) Filter(subject *domain.Subject, resources []domain.Resource) []domain.Resource {
	visible := make([]domain.Resource, 0, len(resources))
	for _, resource := range resources {
		if e.Decide(subject, resource).Allow {
			visible = append(visible, resource)
		}
	}
	return visible
}

// DecideAll implements DecisionEngine.
func (e *decisionEngine) DecideAll(
	ctx context.Context,
	subject *domain.Subject,
	resources []domain.Resource,
) ([]domain.AccessDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decisions := make([]domain.AccessDecision, len(resources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i := range resources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decisions[i] = e.Decide(subject, resources[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return decisions, nil
}
