// Package httpapi exposes the progression engine over a JSON REST surface.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eslsoft/cyberpath/internal/entity"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondDomainError maps domain sentinels onto HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidEntityID),
		errors.Is(err, entity.ErrInvalidEntityKind),
		errors.Is(err, entity.ErrInvalidMeasure),
		errors.Is(err, entity.ErrInvalidAward):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, entity.ErrProgressNotFound),
		errors.Is(err, entity.ErrStatsNotFound),
		errors.Is(err, entity.ErrAchievementNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, entity.ErrStatsAlreadyExist):
		RespondError(c, http.StatusConflict, "already_exists", err)
	case errors.Is(err, entity.ErrStorageUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
