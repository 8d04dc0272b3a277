package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/roleguard/internal/access/domain"
	accessService "github.com/allisson/roleguard/internal/access/service"
	"github.com/allisson/roleguard/internal/database"
	apperrors "github.com/allisson/roleguard/internal/errors"
	customValidation "github.com/allisson/roleguard/internal/validation"
)

// subjectUseCase implements SubjectUseCase. Every mutation invalidates the
// registered resolver caches so later resolutions see the new role or status.
type subjectUseCase struct {
	txManager       database.TxManager
	subjectRepo     SubjectRepository
	passwordService accessService.PasswordService
	invalidators    []CacheInvalidator
	logger          *slog.Logger
}

// Create validates the input, hashes the password and stores the subject.
func (s *subjectUseCase) Create(ctx context.Context, input *domain.CreateSubjectInput) (*domain.Subject, error) {
	normalized := *input
	normalized.Email = strings.ToLower(strings.TrimSpace(input.Email))
	normalized.DisplayName = strings.TrimSpace(input.DisplayName)

	if err := validateCreateSubjectInput(&normalized); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	role, err := domain.ParseRole(normalized.Role)
	if err != nil {
		return nil, err
	}

	email := normalized.Email
	if _, err := s.subjectRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrSubjectAlreadyExists
	} else if !apperrors.Is(err, domain.ErrSubjectNotFound) {
		return nil, err
	}

	passwordHash, err := s.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	subject := &domain.Subject{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        email,
		DisplayName:  normalized.DisplayName,
		Role:         role,
		IsActive:     input.IsActive,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}

	s.logger.Info("subject created",
		slog.String("subject_id", subject.ID),
		slog.String("role", string(subject.Role)),
	)

	return subject, nil
}

// Get retrieves a subject by ID.
func (s *subjectUseCase) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	return s.subjectRepo.Get(ctx, subjectID)
}

// List returns subjects matching the filter.
func (s *subjectUseCase) List(ctx context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error) {
	return s.subjectRepo.List(ctx, filter)
}

// SetRole changes the subject's role after validating it against the registry.
func (s *subjectUseCase) SetRole(ctx context.Context, subjectID string, role string) (*domain.Subject, error) {
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, subjectID, "subject role changed", func(subject *domain.Subject) {
		subject.Role = parsed
	})
}

// SetStatus activates or deactivates the subject.
func (s *subjectUseCase) SetStatus(ctx context.Context, subjectID string, isActive bool) (*domain.Subject, error) {
	return s.mutate(ctx, subjectID, "subject status changed", func(subject *domain.Subject) {
		subject.IsActive = isActive
	})
}

// UpdateProfile changes non-blank display fields.
func (s *subjectUseCase) UpdateProfile(
	ctx context.Context,
	subjectID string,
	input *domain.UpdateProfileInput,
) (*domain.Subject, error) {
	return s.mutate(ctx, subjectID, "subject profile updated", func(subject *domain.Subject) {
		if name := strings.TrimSpace(input.DisplayName); name != "" {
			subject.DisplayName = name
		}
		if avatar := strings.TrimSpace(input.AvatarURL); avatar != "" {
			subject.AvatarURL = avatar
		}
	})
}

func (s *subjectUseCase) mutate(
	ctx context.Context,
	subjectID string,
	message string,
	apply func(subject *domain.Subject),
) (*domain.Subject, error) {
	var subject *domain.Subject
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		subject, err = s.subjectRepo.Get(ctx, subjectID)
		if err != nil {
			return err
		}

		apply(subject)
		subject.UpdatedAt = time.Now().UTC()

		return s.subjectRepo.Update(ctx, subject)
	})
	if err != nil {
		return nil, err
	}

	for _, invalidator := range s.invalidators {
		invalidator.Invalidate()
	}

	s.logger.Info(message,
		slog.String("subject_id", subject.ID),
		slog.String("role", string(subject.Role)),
		slog.Bool("is_active", subject.IsActive),
	)

	return subject, nil
}

func validateCreateSubjectInput(input *domain.CreateSubjectInput) error {
	return validation.ValidateStruct(input,
		validation.Field(&input.Email, validation.Required, customValidation.Email),
		validation.Field(&input.DisplayName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&input.Password, validation.Required, customValidation.DefaultPasswordStrength),
		validation.Field(&input.Role, validation.Required),
	)
}

// NewSubjectUseCase creates a SubjectUseCase. Mutations read and write the
// subject inside one transaction; invalidators are notified after it commits.
func NewSubjectUseCase(
	txManager database.TxManager,
	subjectRepo SubjectRepository,
	passwordService accessService.PasswordService,
	logger *slog.Logger,
	invalidators ...CacheInvalidator,
) SubjectUseCase {
	return &subjectUseCase{
		txManager:       txManager,
		subjectRepo:     subjectRepo,
		passwordService: passwordService,
		invalidators:    invalidators,
		logger:          logger,
	}
}
