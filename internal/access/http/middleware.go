package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/access/usecase"
	apperrors "github.com/allisson/roleguard/internal/errors"
	"github.com/allisson/roleguard/internal/httputil"
)

const bearerPrefix = "bearer "

// bearerToken extracts the token of a "Bearer <token>" header, case-insensitive.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	return token, token != ""
}

// AuthenticationMiddleware resolves the Bearer token into a subject and stores
// it in the request context.
//
// Missing or malformed headers and rejected tokens answer 401. Inactive
// subjects are authenticated; decisions deny them later with account_disabled.
func AuthenticationMiddleware(resolver usecase.SubjectResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		subject, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithSubject(c.Request.Context(), subject)
		ctx = WithToken(ctx, token)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject_id", subject.ID),
			slog.String("role", subject.Role.String()))

		c.Next()
	}
}

// RequireResourceMiddleware admits the request only when the decision engine
// allows the authenticated subject on the catalog resource resourceID.
// It must run after AuthenticationMiddleware.
func RequireResourceMiddleware(
	resources usecase.ResourceUseCase,
	resourceID string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := GetSubject(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		result, err := resources.Get(c.Request.Context(), subject, resourceID)
		if err != nil {
			// An unregistered gate denies everyone.
			if apperrors.Is(err, domain.ErrResourceNotFound) {
				logger.Error("route gate is not registered", slog.String("resource_id", resourceID))
				err = apperrors.ErrForbidden
			}
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if !result.Decision.Allow {
			httputil.HandleForbiddenGin(c, string(result.Decision.Reason), logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
