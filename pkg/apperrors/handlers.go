package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body for HTTP responses.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError renders any error as a JSON error response, wrapping unknown
// errors as internal.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode >= 500 {
		slog.Error("server error", "domain", appErr.Domain, "code", appErr.Code, "error", appErr.Err)
	}
	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleBindingError converts gin binding failures into validation errors.
func HandleBindingError(c *gin.Context, err error) {
	HandleError(c, ValidationError("request", "Invalid request body").WithDetails(err.Error()))
}
