package usecase

import (
	"context"
	"time"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/metrics"
)

const metricsDomain = "access"

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// subjectResolverWithMetrics decorates SubjectResolver with metrics instrumentation.
type subjectResolverWithMetrics struct {
	next    SubjectResolver
	metrics metrics.BusinessMetrics
}

// NewSubjectResolverWithMetrics wraps a SubjectResolver with metrics recording.
func NewSubjectResolverWithMetrics(resolver SubjectResolver, m metrics.BusinessMetrics) SubjectResolver {
	return &subjectResolverWithMetrics{next: resolver, metrics: m}
}

// Resolve records metrics for token resolution.
func (s *subjectResolverWithMetrics) Resolve(ctx context.Context, token string) (*domain.Subject, error) {
	start := time.Now()
	subject, err := s.next.Resolve(ctx, token)
	record(ctx, s.metrics, "subject_resolve", start, err)
	return subject, err
}

// Invalidate is not instrumented.
func (s *subjectResolverWithMetrics) Invalidate() {
	s.next.Invalidate()
}

// resourceUseCaseWithMetrics decorates ResourceUseCase with metrics instrumentation.
type resourceUseCaseWithMetrics struct {
	next    ResourceUseCase
	metrics metrics.BusinessMetrics
}

// NewResourceUseCaseWithMetrics wraps a ResourceUseCase with metrics recording.
func NewResourceUseCaseWithMetrics(useCase ResourceUseCase, m metrics.BusinessMetrics) ResourceUseCase {
	return &resourceUseCaseWithMetrics{next: useCase, metrics: m}
}

// Register records metrics for resource registration.
func (r *resourceUseCaseWithMetrics) Register(
	ctx context.Context,
	input *domain.RegisterResourceInput,
) (*domain.RegisterResourceOutput, error) {
	start := time.Now()
	output, err := r.next.Register(ctx, input)
	record(ctx, r.metrics, "resource_register", start, err)
	return output, err
}

// Get records metrics for single resource decisions.
func (r *resourceUseCaseWithMetrics) Get(
	ctx context.Context,
	subject *domain.Subject,
	resourceID string,
) (*ResourceDecision, error) {
	start := time.Now()
	decision, err := r.next.Get(ctx, subject, resourceID)
	record(ctx, r.metrics, "resource_get", start, err)
	return decision, err
}

// ListVisible records metrics for visibility listings.
func (r *resourceUseCaseWithMetrics) ListVisible(
	ctx context.Context,
	subject *domain.Subject,
	filter domain.ResourceFilter,
) ([]domain.Resource, error) {
	start := time.Now()
	resources, err := r.next.ListVisible(ctx, subject, filter)
	record(ctx, r.metrics, "resource_list_visible", start, err)
	return resources, err
}

// DecideMany records metrics for batch decisions.
func (r *resourceUseCaseWithMetrics) DecideMany(
	ctx context.Context,
	subject *domain.Subject,
	resourceIDs []string,
) ([]ResourceDecision, error) {
	start := time.Now()
	decisions, err := r.next.DecideMany(ctx, subject, resourceIDs)
	record(ctx, r.metrics, "resource_decide_many", start, err)
	return decisions, err
}

// subjectUseCaseWithMetrics decorates SubjectUseCase with metrics instrumentation.
type subjectUseCaseWithMetrics struct {
	next    SubjectUseCase
	metrics metrics.BusinessMetrics
}

// NewSubjectUseCaseWithMetrics wraps a SubjectUseCase with metrics recording.
func NewSubjectUseCaseWithMetrics(useCase SubjectUseCase, m metrics.BusinessMetrics) SubjectUseCase {
	return &subjectUseCaseWithMetrics{next: useCase, metrics: m}
}

// Create records metrics for subject creation.
func (s *subjectUseCaseWithMetrics) Create(
	ctx context.Context,
	input *domain.CreateSubjectInput,
) (*domain.Subject, error) {
	start := time.Now()
	subject, err := s.next.Create(ctx, input)
	record(ctx, s.metrics, "subject_create", start, err)
	return subject, err
}

// Get records metrics for subject retrieval.
func (s *subjectUseCaseWithMetrics) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	start := time.Now()
	subject, err := s.next.Get(ctx, subjectID)
	record(ctx, s.metrics, "subject_get", start, err)
	return subject, err
}

// List records metrics for subject listings.
func (s *subjectUseCaseWithMetrics) List(
	ctx context.Context,
	filter domain.SubjectFilter,
) ([]*domain.Subject, error) {
	start := time.Now()
	subjects, err := s.next.List(ctx, filter)
	record(ctx, s.metrics, "subject_list", start, err)
	return subjects, err
}

// SetRole records metrics for role changes.
func (s *subjectUseCaseWithMetrics) SetRole(
	ctx context.Context,
	subjectID string,
	role string,
) (*domain.Subject, error) {
	start := time.Now()
	subject, err := s.next.SetRole(ctx, subjectID, role)
	record(ctx, s.metrics, "subject_set_role", start, err)
	return subject, err
}

// SetStatus records metrics for status changes.
func (s *subjectUseCaseWithMetrics) SetStatus(
	ctx context.Context,
	subjectID string,
	isActive bool,
) (*domain.Subject, error) {
	start := time.Now()
	subject, err := s.next.SetStatus(ctx, subjectID, isActive)
	record(ctx, s.metrics, "subject_set_status", start, err)
	return subject, err
}

// UpdateProfile records metrics for profile updates.
func (s *subjectUseCaseWithMetrics) UpdateProfile(
	ctx context.Context,
	subjectID string,
	input *domain.UpdateProfileInput,
) (*domain.Subject, error) {
	start := time.Now()
	subject, err := s.next.UpdateProfile(ctx, subjectID, input)
	record(ctx, s.metrics, "subject_update_profile", start, err)
	return subject, err
}
