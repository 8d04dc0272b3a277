package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/access/http/dto"
	"github.com/allisson/roleguard/internal/access/usecase"
	apperrors "github.com/allisson/roleguard/internal/errors"
	"github.com/allisson/roleguard/internal/httputil"
	customValidation "github.com/allisson/roleguard/internal/validation"
)

// ResourceHandler handles the resource catalog and decision endpoints.
type ResourceHandler struct {
	resources usecase.ResourceUseCase
	logger    *slog.Logger
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(resources usecase.ResourceUseCase, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		resources: resources,
		logger:    logger,
	}
}

// ListHandler lists the resources visible to the caller.
// GET /v1/resources?type=&q= - Requires authentication.
func (h *ResourceHandler) ListHandler(c *gin.Context) {
	subject, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.ResourceFilter{Query: c.Query("q")}
	if resourceType := c.Query("type"); resourceType != "" {
		if !domain.IsValidResourceType(resourceType) {
			httputil.HandleBadRequestGin(c,
				fmt.Errorf("invalid type parameter: %q is not a known resource type", resourceType), h.logger)
			return
		}
		filter.Type = domain.ResourceType(resourceType)
	}

	resources, err := h.resources.ListVisible(c.Request.Context(), subject, filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	window, page := httputil.Paginate(resources, offset, limit)
	c.JSON(http.StatusOK, dto.MapResourcesToListResponse(window, page))
}

// GetHandler returns a resource when the caller may access it.
// GET /v1/resources/*id - Requires authentication; denials answer 403 with the reason.
// Route resources keep their leading slash: /v1/resources//admin.
func (h *ResourceHandler) GetHandler(c *gin.Context) {
	subject, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	result, err := h.resources.Get(c.Request.Context(), subject, resourceIDParam(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !result.Decision.Allow {
		httputil.HandleForbiddenGin(c, string(result.Decision.Reason), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResourceToResponse(result.Resource))
}

// resourceIDParam strips the separator slash the catch-all parameter keeps.
func resourceIDParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("id"), "/")
}

// RegisterHandler classifies and stores a new resource. Dropped roles are
// echoed as warnings.
// POST /v1/resources - Requires the /admin route.
func (h *ResourceHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.resources.Register(c.Request.Context(), &domain.RegisterResourceInput{
		ID:         req.ID,
		Type:       req.Type,
		Title:      req.Title,
		AccessList: req.AccessList,
		Sensitive:  req.Sensitive,
		Metadata:   req.Metadata,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRegisterOutputToResponse(output))
}

// DecideHandler evaluates the caller against a batch of resources.
// Inactive callers still get answers, all denied with account_disabled.
// POST /v1/decisions - Requires authentication.
func (h *ResourceHandler) DecideHandler(c *gin.Context) {
	subject, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	decisions, err := h.resources.DecideMany(c.Request.Context(), subject, req.ResourceIDs)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecisionsToResponse(decisions))
}
