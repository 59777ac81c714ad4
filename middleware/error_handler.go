package middleware

import (
	"fmt"
	"strconv"

	"github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON error envelope returned to the frontend.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler converts errors attached to the gin context into JSON error
// responses. Handlers report failures with c.Error(err) and return; this
// middleware decides status codes and the response shape.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appError, ok := err.(*errors.AppError); ok {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			response := ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
			}

			// Details leak internals, so only surface them for errors the
			// frontend acts on, or in debug mode.
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == errors.ValidationError ||
				appError.Type == errors.NotFoundError ||
				appError.Type == errors.ApplicationNotFoundError ||
				appError.Type == errors.UploadRejectedError) {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		// Gin binding errors come through as bind-typed errors.
		if c.Errors.Last().Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, 400, "Request binding error")

			response := ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Code:    "400",
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}

			c.JSON(400, response)
			return
		}

		logger.LogHTTPError(c, err, 500, "Unexpected server error")

		response := ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal Server Error",
			Code:    "500",
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}

		c.JSON(500, response)
	}
}
