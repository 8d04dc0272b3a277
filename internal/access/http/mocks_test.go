package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/access/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext creates a gin context with an optional JSON body.
func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// withSubject puts subject and token into the request context as the
// authentication middleware does.
func withSubject(c *gin.Context, subject *domain.Subject, token string) {
	ctx := WithSubject(c.Request.Context(), subject)
	ctx = WithToken(ctx, token)
	c.Request = c.Request.WithContext(ctx)
}

func testSubject(role domain.Role, active bool) *domain.Subject {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Subject{
		ID:          "subject-" + string(role),
		Email:       string(role) + "@example.com",
		DisplayName: "Test " + string(role),
		Role:        role,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type mockSubjectResolver struct {
	mock.Mock
}

func (m *mockSubjectResolver) Resolve(ctx context.Context, token string) (*domain.Subject, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *mockSubjectResolver) Invalidate() {
	m.Called()
}

type mockResourceUseCase struct {
	mock.Mock
}

func (m *mockResourceUseCase) Register(
	ctx context.Context,
	input *domain.RegisterResourceInput,
) (*domain.RegisterResourceOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterResourceOutput), args.Error(1)
}

func (m *mockResourceUseCase) Get(
	ctx context.Context,
	subject *domain.Subject,
	resourceID string,
) (*usecase.ResourceDecision, error) {
	args := m.Called(ctx, subject, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ResourceDecision), args.Error(1)
}

func (m *mockResourceUseCase) ListVisible(
	ctx context.Context,
	subject *domain.Subject,
	filter domain.ResourceFilter,
) ([]domain.Resource, error) {
	args := m.Called(ctx, subject, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func (m *mockResourceUseCase) DecideMany(
	ctx context.Context,
	subject *domain.Subject,
	resourceIDs []string,
) ([]usecase.ResourceDecision, error) {
	args := m.Called(ctx, subject, resourceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.ResourceDecision), args.Error(1)
}

type mockSubjectUseCase struct {
	mock.Mock
}

func (m *mockSubjectUseCase) subjectResult(args mock.Arguments) (*domain.Subject, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *mockSubjectUseCase) Create(ctx context.Context, input *domain.CreateSubjectInput) (*domain.Subject, error) {
	return m.subjectResult(m.Called(ctx, input))
}

func (m *mockSubjectUseCase) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	return m.subjectResult(m.Called(ctx, subjectID))
}

func (m *mockSubjectUseCase) List(ctx context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subject), args.Error(1)
}

func (m *mockSubjectUseCase) SetRole(ctx context.Context, subjectID string, role string) (*domain.Subject, error) {
	return m.subjectResult(m.Called(ctx, subjectID, role))
}

func (m *mockSubjectUseCase) SetStatus(ctx context.Context, subjectID string, isActive bool) (*domain.Subject, error) {
	return m.subjectResult(m.Called(ctx, subjectID, isActive))
}

func (m *mockSubjectUseCase) UpdateProfile(
	ctx context.Context,
	subjectID string,
	input *domain.UpdateProfileInput,
) (*domain.Subject, error) {
	return m.subjectResult(m.Called(ctx, subjectID, input))
}

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Authorize(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockTokenIssuer) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockTokenIssuer) TokenExpiry(token string) (*time.Time, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *mockTokenIssuer) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate() {
	m.Called()
}
