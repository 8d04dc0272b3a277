package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/roleguard/internal/access/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockIdentityProvider is a mock implementation of IdentityProvider for testing.
type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockIdentityProvider) FetchSubject(ctx context.Context, token string) (*domain.Subject, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

// memoryTokenStore is an in-process TokenStore with optional injected failures.
type memoryTokenStore struct {
	mu        sync.Mutex
	token     string
	ok        bool
	saveErr   error
	deleteErr error
	loadErr   error
}

func (s *memoryTokenStore) Load(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", false, s.loadErr
	}
	return s.token, s.ok, nil
}

func (s *memoryTokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token, s.ok = token, true
	return nil
}

func (s *memoryTokenStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.token, s.ok = "", false
	return nil
}

func (s *memoryTokenStore) stored() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.ok
}

// mockSubjectRepository is a mock implementation of SubjectRepository for testing.
type mockSubjectRepository struct {
	mock.Mock
}

func (m *mockSubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *mockSubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *mockSubjectRepository) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *mockSubjectRepository) GetByEmail(ctx context.Context, email string) (*domain.Subject, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *mockSubjectRepository) List(
	ctx context.Context,
	filter domain.SubjectFilter,
) ([]*domain.Subject, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subject), args.Error(1)
}

// mockResourceRepository is a mock implementation of ResourceRepository for testing.
type mockResourceRepository struct {
	mock.Mock
}

func (m *mockResourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *mockResourceRepository) Get(ctx context.Context, resourceID string) (*domain.Resource, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

func (m *mockResourceRepository) List(
	ctx context.Context,
	filter domain.ResourceFilter,
) ([]domain.Resource, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resource), args.Error(1)
}

// mockPasswordService is a mock implementation of PasswordService for testing.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) HashPassword(plainPassword string) (string, error) {
	args := m.Called(plainPassword)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) ComparePassword(plainPassword string, hashedPassword string) bool {
	args := m.Called(plainPassword, hashedPassword)
	return args.Bool(0)
}

// mockInvalidator counts Invalidate calls.
type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate() {
	m.Called()
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func createTestSubject(id string, role domain.Role, active bool) *domain.Subject {
	return &domain.Subject{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: "Subject " + id,
		Role:        role,
		IsActive:    active,
		CreatedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}
