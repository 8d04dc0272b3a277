package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/access/http/dto"
	"github.com/allisson/roleguard/internal/access/usecase"
	apperrors "github.com/allisson/roleguard/internal/errors"
	"github.com/allisson/roleguard/internal/httputil"
	customValidation "github.com/allisson/roleguard/internal/validation"
)

// SubjectHandler handles the caller's profile and the admin subject console.
type SubjectHandler struct {
	subjects usecase.SubjectUseCase
	logger   *slog.Logger
}

// NewSubjectHandler creates a SubjectHandler.
func NewSubjectHandler(subjects usecase.SubjectUseCase, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjects: subjects,
		logger:   logger,
	}
}

// MeHandler returns the authenticated subject with its role presentation.
// GET /v1/me - Requires authentication.
func (h *SubjectHandler) MeHandler(c *gin.Context) {
	subject, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubjectToResponse(subject))
}

// UpdateMeHandler changes the caller's display fields.
// PATCH /v1/me - Requires authentication.
func (h *SubjectHandler) UpdateMeHandler(c *gin.Context) {
	subject, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	updated, err := h.subjects.UpdateProfile(c.Request.Context(), subject.ID, &domain.UpdateProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubjectToResponse(updated))
}

// ListHandler lists subjects with optional q, role and status filters.
// GET /v1/admin/subjects - Requires the /admin route.
func (h *SubjectHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.SubjectFilter{
		Query:  c.Query("q"),
		Status: domain.StatusFilter(c.DefaultQuery("status", string(domain.StatusAll))),
	}
	switch filter.Status {
	case domain.StatusAll, domain.StatusActive, domain.StatusInactive:
	default:
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid status parameter: must be one of all, active, inactive"), h.logger)
		return
	}
	if role := c.Query("role"); role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			httputil.HandleBadRequestGin(c,
				fmt.Errorf("invalid role parameter: %w", err), h.logger)
			return
		}
		filter.Role = parsed
	}

	subjects, err := h.subjects.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	window, page := httputil.Paginate(subjects, offset, limit)
	c.JSON(http.StatusOK, dto.MapSubjectsToListResponse(window, page))
}

// CreateHandler creates a subject account.
// POST /v1/admin/subjects - Requires the /admin route.
func (h *SubjectHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	subject, err := h.subjects.Create(c.Request.Context(), &domain.CreateSubjectInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
		IsActive:    isActive,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSubjectToResponse(subject))
}

// SetRoleHandler changes a subject's role.
// PATCH /v1/admin/subjects/:id/role - Requires the /admin route.
func (h *SubjectHandler) SetRoleHandler(c *gin.Context) {
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	subject, err := h.subjects.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubjectToResponse(subject))
}

// SetStatusHandler activates or deactivates a subject.
// PATCH /v1/admin/subjects/:id/status - Requires the /admin route.
func (h *SubjectHandler) SetStatusHandler(c *gin.Context) {
	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	subject, err := h.subjects.SetStatus(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubjectToResponse(subject))
}
