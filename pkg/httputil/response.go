package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) Response {
	return Response{Status: StatusSuccess, Message: message, Data: data}
}

func NewErrorResponse(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// RespondWithSuccess sends a success envelope with the given status code.
func RespondWithSuccess(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, NewSuccessResponse(message, data))
}

// RespondWithError maps err to a status code. Anything that is not an
// AppError is reported as a 500 without leaking its text.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.ErrInternal {
		status = appErr.StatusCode()
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}

// RespondWithStatus aborts with a plain error envelope.
func RespondWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}
