package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/logger"
)

// RespondWithError renders err as an AppError body with its HTTP status.
// Anything that is not an AppError, or whose chain holds a request body over
// the limit, is mapped first.
func RespondWithError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("Request failed", logger.Fields(
			"path", c.Request.URL.Path,
			"code", string(appErr.Code),
			logger.FieldError, err,
		))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.PayloadTooLarge(maxErr.Limit)
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.Internal(err)
}
