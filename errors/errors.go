package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError          ErrorType = "VALIDATION_ERROR"
	NotFoundError            ErrorType = "NOT_FOUND"
	ServerError              ErrorType = "SERVER_ERROR"
	NoActiveApplicationError ErrorType = "NO_ACTIVE_APPLICATION"
	ApplicationNotFoundError ErrorType = "APPLICATION_NOT_FOUND"
	ExternalServiceError     ErrorType = "EXTERNAL_SERVICE_ERROR"
	UploadRejectedError      ErrorType = "UPLOAD_REJECTED"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status code associated with the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NoActiveApplication signals a mutation attempted while no application is
// current. Callers decide whether to surface it or treat it as a no-op.
func NoActiveApplication() *AppError {
	return &AppError{
		Type:       NoActiveApplicationError,
		Message:    "No active application",
		Detail:     "create or load an application first",
		HTTPStatus: http.StatusConflict,
	}
}

func ApplicationNotFound(id string) *AppError {
	return &AppError{
		Type:       ApplicationNotFoundError,
		Message:    "Application not found",
		Detail:     fmt.Sprintf("Application ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func UploadRejected(reason string) *AppError {
	return &AppError{
		Type:       UploadRejectedError,
		Message:    "Upload rejected",
		Detail:     reason,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func ExternalService(service string, err error) *AppError {
	return &AppError{
		Type:       ExternalServiceError,
		Message:    fmt.Sprintf("%s request failed", service),
		Detail:     "Please try again later",
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError, ApplicationNotFoundError:
		return http.StatusNotFound
	case NoActiveApplicationError:
		return http.StatusConflict
	case UploadRejectedError:
		return http.StatusUnprocessableEntity
	case ExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
