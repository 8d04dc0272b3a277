// Package httputil writes JSON error responses and parses list parameters for gin handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/roleguard/internal/errors"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type errorMapping struct {
	sentinel error
	status   int
	code     string
	message  string // empty means the error text is echoed
}

// errorMappings is checked in order. Unauthorized precedes Unavailable so a
// rejected authorization code, tagged with both, answers 401.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "An upstream service is unavailable"},
}

// HandleErrorGin maps err onto a status code and writes it. Unknown errors
// become 500 without leaking their text.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

	for _, m := range errorMappings {
		if !apperrors.Is(err, m.sentinel) {
			continue
		}
		status = m.status
		body = ErrorResponse{Error: m.code, Message: m.message}
		if body.Message == "" {
			body.Message = err.Error()
		}
		break
	}

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, body)
}

// HandleForbiddenGin writes a 403 carrying the denial reason.
func HandleForbiddenGin(c *gin.Context, reason string, logger *slog.Logger) {
	if logger != nil {
		logger.Info("access denied",
			slog.String("path", c.Request.URL.Path),
			slog.String("reason", reason),
		)
	}

	c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Reason: reason})
}

// HandleBadRequestGin answers 400 for unparsable bodies or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", "bad request", err, logger)
}

// HandleValidationErrorGin answers 422 with the validation message.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", "validation failed", err, logger)
}

func writeClientError(c *gin.Context, status int, code, logMsg string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn(logMsg, slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
