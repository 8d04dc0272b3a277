package usecase

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/roleguard/internal/access/domain"
	accessService "github.com/allisson/roleguard/internal/access/service"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// resourceUseCase implements ResourceUseCase.
type resourceUseCase struct {
	resourceRepo ResourceRepository
	classifier   accessService.ResourceClassifier
	engine       accessService.DecisionEngine
	logger       *slog.Logger
}

// Register classifies the declared access list, applies an explicit sensitivity
// override and stores the resource. Resources without an ID get a UUIDv7.
func (r *resourceUseCase) Register(
	ctx context.Context,
	input *domain.RegisterResourceInput,
) (*domain.RegisterResourceOutput, error) {
	classification, err := r.classifier.Classify(input.Type, input.AccessList)
	r.logWarnings(input, classification.Warnings)
	if err != nil {
		return nil, err
	}

	sensitive := classification.Sensitive
	if input.Sensitive != nil {
		sensitive = *input.Sensitive
	}

	resourceID := strings.TrimSpace(input.ID)
	if resourceID == "" {
		resourceID = uuid.Must(uuid.NewV7()).String()
	}

	resource := &domain.Resource{
		ID:            resourceID,
		Type:          domain.ResourceType(input.Type),
		Title:         strings.TrimSpace(input.Title),
		RequiredRoles: classification.RequiredRoles,
		Sensitive:     sensitive,
		Metadata:      maps.Clone(input.Metadata),
		CreatedAt:     time.Now().UTC(),
	}

	if err := r.resourceRepo.Create(ctx, resource); err != nil {
		return nil, err
	}

	return &domain.RegisterResourceOutput{
		Resource: resource,
		Warnings: classification.Warnings,
	}, nil
}

// Get loads the resource and decides access for the subject.
func (r *resourceUseCase) Get(
	ctx context.Context,
	subject *domain.Subject,
	resourceID string,
) (*ResourceDecision, error) {
	resource, err := r.resourceRepo.Get(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	return &ResourceDecision{
		Resource: *resource,
		Decision: r.engine.Decide(subject, *resource),
	}, nil
}

// ListVisible returns only the resources the subject is allowed to see,
// preserving catalog order.
func (r *resourceUseCase) ListVisible(
	ctx context.Context,
	subject *domain.Subject,
	filter domain.ResourceFilter,
) ([]domain.Resource, error) {
	if domain.IsAnonymous(subject) {
		return []domain.Resource{}, nil
	}

	resources, err := r.resourceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return r.engine.Filter(subject, resources), nil
}

// DecideMany loads every resource and decides them in parallel.
// An unknown ID fails the whole batch.
func (r *resourceUseCase) DecideMany(
	ctx context.Context,
	subject *domain.Subject,
	resourceIDs []string,
) ([]ResourceDecision, error) {
	resources := make([]domain.Resource, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		resource, err := r.resourceRepo.Get(ctx, resourceID)
		if err != nil {
			return nil, apperrors.Wrapf(err, "resource %q", resourceID)
		}
		resources = append(resources, *resource)
	}

	decisions, err := r.engine.DecideAll(ctx, subject, resources)
	if err != nil {
		return nil, err
	}

	result := make([]ResourceDecision, len(resources))
	for i := range resources {
		result[i] = ResourceDecision{Resource: resources[i], Decision: decisions[i]}
	}

	return result, nil
}

func (r *resourceUseCase) logWarnings(input *domain.RegisterResourceInput, warnings []domain.Warning) {
	for _, warning := range warnings {
		r.logger.Warn("resource access list entry dropped",
			slog.String("resource_id", input.ID),
			slog.String("code", string(warning.Code)),
			slog.String("value", warning.Value),
		)
	}
}

// NewResourceUseCase creates a ResourceUseCase.
func NewResourceUseCase(
	resourceRepo ResourceRepository,
	classifier accessService.ResourceClassifier,
	engine accessService.DecisionEngine,
	logger *slog.Logger,
) ResourceUseCase {
	return &resourceUseCase{
		resourceRepo: resourceRepo,
		classifier:   classifier,
		engine:       engine,
		logger:       logger,
	}
}
