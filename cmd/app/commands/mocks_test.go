package commands

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/roleguard/internal/access/domain"
	accessUseCase "github.com/allisson/roleguard/internal/access/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSubject(role domain.Role, active bool) *domain.Subject {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Subject{
		ID:          "0190a1b2-0000-7000-8000-000000000001",
		Email:       "jane.smith@example.com",
		DisplayName: "Jane Smith",
		Role:        role,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type mockSubjectUseCase struct {
	mock.Mock
}

func (m *mockSubjectUseCase) Create(ctx context.Context, input *domain.CreateSubjectInput) (*domain.Subject, error) {
	args := m.Called(ctx, input)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSubjectUseCase) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSubjectUseCase) List(ctx context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error) {
	args := m.Called(ctx, filter)
	subjects, _ := args.Get(0).([]*domain.Subject)
	return subjects, args.Error(1)
}

func (m *mockSubjectUseCase) SetRole(ctx context.Context, subjectID string, role string) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID, role)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSubjectUseCase) SetStatus(ctx context.Context, subjectID string, isActive bool) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID, isActive)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSubjectUseCase) UpdateProfile(
	ctx context.Context,
	subjectID string,
	input *domain.UpdateProfileInput,
) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID, input)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

type mockSessionManager struct {
	mock.Mock
}

func (m *mockSessionManager) Start(ctx context.Context, token string) (*domain.Subject, error) {
	args := m.Called(ctx, token)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSessionManager) End(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSessionManager) Current() *domain.Subject {
	subject, _ := m.Called().Get(0).(*domain.Subject)
	return subject
}

func (m *mockSessionManager) State() domain.SessionState {
	return m.Called().Get(0).(domain.SessionState)
}

func (m *mockSessionManager) Session() *domain.Session {
	session, _ := m.Called().Get(0).(*domain.Session)
	return session
}

func (m *mockSessionManager) Restore(ctx context.Context) (*domain.Subject, error) {
	args := m.Called(ctx)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSessionManager) Refresh(ctx context.Context) (*domain.Subject, error) {
	args := m.Called(ctx)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

func (m *mockSessionManager) UpdateProfile(input *domain.UpdateProfileInput) (*domain.Subject, error) {
	args := m.Called(input)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

type mockResourceUseCase struct {
	mock.Mock
}

func (m *mockResourceUseCase) Register(
	ctx context.Context,
	input *domain.RegisterResourceInput,
) (*domain.RegisterResourceOutput, error) {
	args := m.Called(ctx, input)
	output, _ := args.Get(0).(*domain.RegisterResourceOutput)
	return output, args.Error(1)
}

func (m *mockResourceUseCase) Get(
	ctx context.Context,
	subject *domain.Subject,
	resourceID string,
) (*accessUseCase.ResourceDecision, error) {
	args := m.Called(ctx, subject, resourceID)
	decision, _ := args.Get(0).(*accessUseCase.ResourceDecision)
	return decision, args.Error(1)
}

func (m *mockResourceUseCase) ListVisible(
	ctx context.Context,
	subject *domain.Subject,
	filter domain.ResourceFilter,
) ([]domain.Resource, error) {
	args := m.Called(ctx, subject, filter)
	resources, _ := args.Get(0).([]domain.Resource)
	return resources, args.Error(1)
}

func (m *mockResourceUseCase) DecideMany(
	ctx context.Context,
	subject *domain.Subject,
	resourceIDs []string,
) ([]accessUseCase.ResourceDecision, error) {
	args := m.Called(ctx, subject, resourceIDs)
	decisions, _ := args.Get(0).([]accessUseCase.ResourceDecision)
	return decisions, args.Error(1)
}

type mockCatalogSeeder struct {
	mock.Mock
}

func (m *mockCatalogSeeder) Seed(ctx context.Context, catalog *domain.Catalog) (*domain.SeedReport, error) {
	args := m.Called(ctx, catalog)
	report, _ := args.Get(0).(*domain.SeedReport)
	return report, args.Error(1)
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) IssueCode(ctx context.Context, subjectID string) (string, error) {
	args := m.Called(ctx, subjectID)
	return args.String(0), args.Error(1)
}

func (m *mockIdentity) Authorize(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockIdentity) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockIdentity) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
