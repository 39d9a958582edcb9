package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
)

// statusForError maps the application error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrBusinessRule),
		errors.Is(err, apperrors.ErrCapacityExceeded),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNotLoaded):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrExternalService),
		errors.Is(err, apperrors.ErrProtocolViolation):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondWithError writes err as a JSON error body. Internal failures are logged and
// hidden behind fallback.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string, extra gin.H) {
	status := statusForError(err)
	body := gin.H{"error": err.Error()}
	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		body["error"] = fallback
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
