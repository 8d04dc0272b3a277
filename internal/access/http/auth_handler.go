package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/roleguard/internal/access/http/dto"
	"github.com/allisson/roleguard/internal/access/usecase"
	apperrors "github.com/allisson/roleguard/internal/errors"
	"github.com/allisson/roleguard/internal/httputil"
	customValidation "github.com/allisson/roleguard/internal/validation"
)

// TokenIssuer is the identity provider surface the API exposes: it turns
// credentials into codes, codes into tokens, and revokes tokens.
type TokenIssuer interface {
	Authorize(ctx context.Context, email, password string) (string, error)
	ExchangeCodeForToken(ctx context.Context, code string) (string, error)
	TokenExpiry(token string) (*time.Time, error)
	Revoke(ctx context.Context, token string) error
}

// AuthHandler handles the login flow endpoints.
type AuthHandler struct {
	issuer      TokenIssuer
	invalidator usecase.CacheInvalidator
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. invalidator is told about revoked
// tokens so cached resolutions are dropped.
func NewAuthHandler(issuer TokenIssuer, invalidator usecase.CacheInvalidator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		issuer:      issuer,
		invalidator: invalidator,
		logger:      logger,
	}
}

// AuthorizeHandler exchanges e-mail and password for a one-time code.
// POST /v1/auth/authorize - No authentication required.
func (h *AuthHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	code, err := h.issuer.Authorize(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthorizeResponse{Code: code})
}

// TokenHandler exchanges a one-time code for a bearer token.
// POST /v1/token - No authentication required.
func (h *AuthHandler) TokenHandler(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.issuer.ExchangeCodeForToken(c.Request.Context(), req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	expiresAt, err := h.issuer.TokenExpiry(token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

// RevokeHandler revokes the caller's own token.
// POST /v1/token/revoke - Requires authentication.
func (h *AuthHandler) RevokeHandler(c *gin.Context) {
	token, ok := GetToken(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.issuer.Revoke(c.Request.Context(), token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	h.invalidator.Invalidate()

	if subject, ok := GetSubject(c.Request.Context()); ok {
		h.logger.Info("token revoked by subject", slog.String("subject_id", subject.ID))
	}

	c.Status(http.StatusNoContent)
}
