// Package errors provides the application error taxonomy for the bukukas API.
// Services return AppError values so that handlers can render a consistent
// envelope without inspecting driver or library errors.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"-"`
	Internal   error               `json:"-"`
	Fields     map[string][]string `json:"errors,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

func (e *AppError) clone() *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Internal:   e.Internal,
		Fields:     e.Fields,
	}
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
// Unhandled failures surface the underlying message to the caller.
func Wrap(sentinel *AppError, internal error) *AppError {
	out := sentinel.clone()
	out.Internal = internal
	if sentinel == ErrInternalServer && internal != nil {
		out.Message = internal.Error()
	}
	return out
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	out := sentinel.clone()
	out.Message = message
	return out
}

// WithFields attaches per-field validation messages.
func WithFields(sentinel *AppError, fields map[string][]string) *AppError {
	out := sentinel.clone()
	out.Fields = fields
	return out
}

// WithStatus overrides the HTTP status, used to pass upstream statuses through.
func WithStatus(sentinel *AppError, status int) *AppError {
	out := sentinel.clone()
	out.StatusCode = status
	return out
}

// Field builds a single-field validation error.
func Field(name, message string) *AppError {
	return &AppError{
		Code:       ErrValidation.Code,
		Message:    message,
		StatusCode: ErrValidation.StatusCode,
		Fields:     map[string][]string{name: {message}},
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "You do not have access to this resource", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrValidation     = &AppError{Code: "VALIDATION_FAILED", Message: "The given data was invalid", StatusCode: http.StatusUnprocessableEntity}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrUpstream       = &AppError{Code: "UPSTREAM_FAILURE", Message: "Upstream service failed", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrSelfRoleChange = &AppError{Code: "SELF_ROLE_CHANGE", Message: "You cannot change your own role", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Transaction group errors.
var (
	ErrGroupNotFound  = &AppError{Code: "GROUP_NOT_FOUND", Message: "Transaction group not found", StatusCode: http.StatusNotFound}
	ErrGroupInUse     = &AppError{Code: "GROUP_IN_USE", Message: "Cannot delete a group that still has transactions", StatusCode: http.StatusBadRequest}
	ErrProtectedGroup = &AppError{Code: "PROTECTED_GROUP", Message: "The Simpaskor group is protected and cannot be modified", StatusCode: http.StatusForbidden}
)

// Payment errors.
var (
	ErrEmployeePaymentNotFound = &AppError{Code: "EMPLOYEE_PAYMENT_NOT_FOUND", Message: "Employee payment not found", StatusCode: http.StatusNotFound}
	ErrHayabusaPaymentNotFound = &AppError{Code: "HAYABUSA_PAYMENT_NOT_FOUND", Message: "Hayabusa payment not found", StatusCode: http.StatusNotFound}
	ErrInvalidStateTransition  = &AppError{Code: "INVALID_STATE_TRANSITION", Message: "Payment cannot move to the requested status", StatusCode: http.StatusBadRequest}
)
